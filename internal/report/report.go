// Package report collects crawl events into per-page rows and writes them
// out in several formats.
//
// The engine addresses rows by the index assigned at enqueue time, so rows
// may be filled in any order; a Report always lists them by index.
package report

import (
	"sort"
	"sync"
	"time"

	"sitecrawl/internal/audit"
	"sitecrawl/internal/crawler"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusStopped   = "stopped by user"
)

// Absent is how an empty extracted field is rendered.
const Absent = "—"

// Row is one page of the result table.
type Row struct {
	Row         int           `json:"row"`
	URL         string        `json:"url"`
	Depth       int           `json:"depth"`
	Done        bool          `json:"done"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	H1          string        `json:"h1,omitempty"`
	BodyPresent *bool         `json:"body_present,omitempty"`
	Verdict     audit.Verdict `json:"verdict,omitempty"`
	Issues      []audit.Issue `json:"issues,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Report is a snapshot of a run.
type Report struct {
	Site        string    `json:"site"`
	GeneratedAt time.Time `json:"generated_at"`
	Status      string    `json:"status"`
	Completed   int       `json:"completed"`
	Planned     int       `json:"planned"`
	Rows        []Row     `json:"rows"`
}

// Counts returns how many finished rows have each verdict.
func (r *Report) Counts() (ok, bad int) {
	for _, row := range r.Rows {
		switch row.Verdict {
		case audit.OK:
			ok++
		case audit.Bad:
			bad++
		}
	}
	return ok, bad
}

// ByKind groups the URLs of finished rows by issue kind, preserving row
// order inside each group. Kinds with no URLs are omitted.
func (r *Report) ByKind() map[audit.Kind][]string {
	out := make(map[audit.Kind][]string)
	for _, row := range r.Rows {
		seen := make(map[audit.Kind]bool, len(row.Issues))
		for _, is := range row.Issues {
			if seen[is.Kind] {
				continue
			}
			seen[is.Kind] = true
			out[is.Kind] = append(out[is.Kind], row.URL)
		}
	}
	return out
}

// Collector is a crawler.Reporter that keeps every row in memory.
type Collector struct {
	mu        sync.Mutex
	site      string
	rows      map[int]*Row
	completed int
	planned   int
	now       func() time.Time
}

func NewCollector(site string) *Collector {
	return &Collector{site: site, rows: make(map[int]*Row), now: time.Now}
}

func (c *Collector) PageQueued(row int, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[row] = &Row{Row: row, URL: url}
}

func (c *Collector) PageResult(res crawler.PageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rows[res.Row]
	if !ok {
		r = &Row{Row: res.Row, URL: res.URL}
		c.rows[res.Row] = r
	}
	r.Depth = res.Depth
	r.Done = true
	r.Verdict = res.Verdict
	r.Issues = res.Issues
	if res.Page != nil {
		r.Title = res.Page.Title
		r.Description = res.Page.Description
		r.H1 = res.Page.H1
		r.BodyPresent = res.Page.BodyPresent
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
}

func (c *Collector) Progress(done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed, c.planned = done, total
}

// Snapshot copies the collected rows into a Report ordered by row index.
func (c *Collector) Snapshot(status string) *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	rep := &Report{
		Site:        c.site,
		GeneratedAt: c.now(),
		Status:      status,
		Completed:   c.completed,
		Planned:     c.planned,
		Rows:        make([]Row, 0, len(c.rows)),
	}
	for _, r := range c.rows {
		rep.Rows = append(rep.Rows, *r)
	}
	sort.Slice(rep.Rows, func(i, j int) bool { return rep.Rows[i].Row < rep.Rows[j].Row })
	return rep
}

// Multi fans every event out to each reporter in order.
type Multi []crawler.Reporter

func (m Multi) PageQueued(row int, url string) {
	for _, r := range m {
		r.PageQueued(row, url)
	}
}

func (m Multi) PageResult(res crawler.PageResult) {
	for _, r := range m {
		r.PageResult(res)
	}
}

func (m Multi) Progress(done, total int) {
	for _, r := range m {
		r.Progress(done, total)
	}
}

func orAbsent(s string) string {
	if s == "" {
		return Absent
	}
	return s
}
