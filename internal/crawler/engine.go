// internal/crawler/engine.go
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"sitecrawl/internal/audit"
	"sitecrawl/internal/frontier"
	"sitecrawl/internal/parser"
	"sitecrawl/internal/transport"
)

// ErrInvalidDomain is returned by Start when no site can be derived from
// the start domain.
var ErrInvalidDomain = errors.New("invalid start domain")

// Fetcher retrieves page HTML. transport.Transport is the production one.
type Fetcher interface {
	Fetch(ctx context.Context, target string, timeout time.Duration, handles *transport.Inflight) (string, error)
}

// Extractor turns HTML into a page record with absolute links.
type Extractor interface {
	Extract(html, baseURL string) (*parser.Page, error)
}

// Auditor derives the issue list shown next to a page.
type Auditor interface {
	Audit(page *parser.Page) []audit.Issue
}

// Reporter consumes engine events. Calls are serialised per run and must
// not call back into the Engine's Start or Stop.
type Reporter interface {
	PageQueued(row int, url string)
	PageResult(res PageResult)
	Progress(done, total int)
}

// PageResult is what the engine knows about one processed page.
type PageResult struct {
	Row     int
	URL     string
	Depth   int
	Page    *parser.Page
	Issues  []audit.Issue
	Verdict audit.Verdict
	// Err is the fetch or parse failure, if any. Page is then empty.
	Err error
}

func (r PageResult) Failed() bool { return r.Err != nil }

// State is the engine lifecycle state.
type State int32

const (
	Idle State = iota
	Seeding
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Seeding:
		return "seeding"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Stats is a point-in-time snapshot of the current run.
type Stats struct {
	Site      string
	Planned   int
	Completed int
	Pending   int
	Inflight  int
}

// Engine drives one crawl run at a time.
type Engine struct {
	fetcher   Fetcher
	extractor Extractor
	auditor   Auditor
	reporter  Reporter
	logger    *zap.Logger

	repollInterval time.Duration
	maxNewPerTick  int

	mu    sync.Mutex // serialises Start and Stop
	run   atomic.Pointer[runContext]
	state atomic.Int32
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithAuditor replaces the default audit rules.
func WithAuditor(a Auditor) EngineOption {
	return func(e *Engine) { e.auditor = a }
}

func WithRepollInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.repollInterval = d }
}

func WithMaxNewPerTick(n int) EngineOption {
	return func(e *Engine) { e.maxNewPerTick = n }
}

func NewEngine(f Fetcher, x Extractor, r Reporter, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:        f,
		extractor:      x,
		auditor:        audit.Auditor{},
		reporter:       r,
		logger:         zap.NewNop(),
		repollInterval: DefaultRepollInterval,
		maxNewPerTick:  DefaultMaxNewPerTick,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.repollInterval <= 0 {
		e.repollInterval = DefaultRepollInterval
	}
	if e.maxNewPerTick <= 0 {
		e.maxNewPerTick = DefaultMaxNewPerTick
	}
	return e
}

// runContext is everything one run owns. Workers and the re-poll loop get
// it explicitly; nothing about a run lives outside it.
type runContext struct {
	site        frontier.Site
	opts        Options
	expandBelow int

	frontier *frontier.Frontier
	handles  *transport.Inflight
	gate     *semaphore.Weighted
	group    *errgroup.Group
	cancel   context.CancelFunc

	// emitMu orders reporter calls; stopped is only set while holding it.
	emitMu  sync.Mutex
	stopped atomic.Bool
	idle    chan struct{}
	// done is closed once the run has been torn down.
	done chan struct{}
}

// Start tears down any previous run and begins crawling domain. It fails
// with ErrInvalidDomain, leaving a running crawl untouched, when domain
// cannot be turned into a site. ctx bounds the lifetime of the run: when it
// ends the run is torn down as if Stop had been called.
func (e *Engine) Start(ctx context.Context, domain string, opts Options) error {
	site, err := frontier.NewSite(domain)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidDomain, domain, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardown()
	e.setState(Seeding)

	workers := opts.workers()
	runCtx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(runCtx)
	rc := &runContext{
		site:        site,
		opts:        opts,
		expandBelow: opts.expandBelow(),
		frontier:    frontier.New(site, opts.PageLimit),
		handles:     transport.NewInflight(),
		gate:        semaphore.NewWeighted(int64(workers)),
		group:       group,
		cancel:      cancel,
		idle:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	e.run.Store(rc)
	go e.watch(ctx, rc)

	e.enqueue(rc, site.Home, 0)

	for range workers {
		group.Go(func() error {
			e.work(gctx, rc)
			return nil
		})
	}
	group.Go(func() error {
		e.repoll(gctx, rc)
		return nil
	})

	e.setState(Running)
	e.logger.Info("crawl started",
		zap.String("home", site.Home),
		zap.Int("workers", workers),
		zap.Int("page_limit", opts.PageLimit),
		zap.Duration("repoll", e.repollInterval))
	return nil
}

// Stop cancels the current run and waits for its goroutines. Results
// already reported stay valid. Once Stop returns no reporter call is made
// and no request of the run is outstanding.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardown()
}

// watch stops rc when ctx ends, unless rc has already been replaced or
// stopped.
func (e *Engine) watch(ctx context.Context, rc *runContext) {
	select {
	case <-rc.done:
		return
	case <-ctx.Done():
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run.Load() == rc {
		e.logger.Debug("run context ended", zap.Error(ctx.Err()))
		e.teardown()
	}
}

func (e *Engine) teardown() {
	rc := e.run.Load()
	if rc == nil {
		return
	}
	e.setState(Stopping)

	rc.emitMu.Lock()
	rc.stopped.Store(true)
	rc.emitMu.Unlock()

	rc.cancel()
	aborted := rc.handles.AbortAll()
	_ = rc.group.Wait()
	close(rc.done)

	e.run.Store(nil)
	e.setState(Idle)
	e.logger.Info("crawl stopped",
		zap.String("home", rc.site.Home),
		zap.Int("completed", rc.frontier.Completed()),
		zap.Int("planned", rc.frontier.Planned()),
		zap.Int("aborted", aborted))
}

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) setState(s State) { e.state.Store(int32(s)) }

// Stats describes the current run; the zero value when idle.
func (e *Engine) Stats() Stats {
	rc := e.run.Load()
	if rc == nil {
		return Stats{}
	}
	return Stats{
		Site:      rc.site.Home,
		Planned:   rc.frontier.Planned(),
		Completed: rc.frontier.Completed(),
		Pending:   rc.frontier.Pending(),
		Inflight:  rc.handles.Len(),
	}
}

// Accounted lists every URL the current run has queued, in sorted order.
func (e *Engine) Accounted() []string {
	rc := e.run.Load()
	if rc == nil {
		return nil
	}
	return rc.frontier.URLs()
}

// Idle receives a value each time every planned page of the current run
// has completed. It returns nil when no run is active.
func (e *Engine) Idle() <-chan struct{} {
	rc := e.run.Load()
	if rc == nil {
		return nil
	}
	return rc.idle
}
