package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"sitecrawl/internal/audit"
)

// MarkdownWriter writes the result table and the per-kind link lists that
// can be pasted into a ticket.
type MarkdownWriter struct {
	out io.Writer
}

func NewMarkdownWriter(out io.Writer) *MarkdownWriter {
	return &MarkdownWriter{out: out}
}

func (w *MarkdownWriter) Write(r *Report) (int, error) {
	md := markdown.NewMarkdown(w.out)

	w.writeSummary(md, r)
	w.writePages(md, r)
	w.writeIssues(md, r)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, r *Report) {
	ok, bad := r.Counts()

	md.H1("SEO crawl report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + r.Site + "`"},
			{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", r.Status},
			{"Pages", strconv.Itoa(r.Completed) + " / " + strconv.Itoa(r.Planned)},
			{"OK", strconv.Itoa(ok)},
			{"Bad", strconv.Itoa(bad)},
		},
	})
	md.PlainText("")

	switch {
	case r.Status == StatusStopped:
		md.Warningf("Crawl was stopped with %d of %d pages done.", r.Completed, r.Planned)
	case bad == 0 && ok > 0:
		md.Tip("No SEO issues found.")
	case bad > 0:
		md.Note(strconv.Itoa(bad) + " page(s) need attention.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, r *Report) {
	md.H2("Pages")
	md.PlainText("")

	if len(r.Rows) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		verdict := string(row.Verdict)
		if !row.Done {
			verdict = "pending"
		}
		rows[i] = []string{
			strconv.Itoa(row.Row + 1),
			cell(row.URL),
			cell(orAbsent(row.Title)),
			cell(orAbsent(row.Description)),
			cell(orAbsent(row.H1)),
			verdict,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Title", "Description", "H1", "Verdict"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, r *Report) {
	md.H2("Issues")
	md.PlainText("")

	groups := r.ByKind()
	if len(groups) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	for _, kind := range audit.Kinds {
		urls := groups[kind]
		if len(urls) == 0 {
			continue
		}
		md.H3(kind.Label() + " (" + string(kind) + ")")
		md.PlainText("")
		md.BulletList(urls...)
		md.PlainText("")
	}
}

// cell keeps table syntax intact for arbitrary page text.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
