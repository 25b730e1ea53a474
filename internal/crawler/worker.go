package crawler

import (
	"context"

	"go.uber.org/zap"

	"sitecrawl/internal/audit"
	"sitecrawl/internal/frontier"
	"sitecrawl/internal/metrics"
	"sitecrawl/internal/parser"
)

// work drains the frontier until the run is cancelled.
func (e *Engine) work(ctx context.Context, rc *runContext) {
	for {
		it, ok := rc.frontier.Next(ctx)
		if !ok {
			return
		}
		e.process(ctx, rc, it)
	}
}

func (e *Engine) process(ctx context.Context, rc *runContext, it frontier.Item) {
	body, err := e.fetch(ctx, rc, it.URL)
	if ctx.Err() != nil {
		// run is ending; the page is abandoned, not failed
		return
	}

	var page *parser.Page
	if err == nil {
		page, err = e.extractor.Extract(body, it.URL)
	}

	res := PageResult{Row: it.Row, URL: it.URL, Depth: it.Depth}
	if err != nil {
		e.logger.Warn("page failed", zap.String("url", it.URL), zap.Error(err))
		res.Err = err
		res.Page = &parser.Page{URL: it.URL}
		res.Issues = audit.LoadFailure()
	} else {
		res.Page = page
		res.Issues = e.auditor.Audit(page)
	}
	res.Verdict = audit.VerdictOf(res.Issues)
	metrics.PagesProcessed.WithLabelValues(string(res.Verdict)).Inc()

	if !rc.emit(func() { e.reporter.PageResult(res) }) {
		return
	}

	if err == nil && it.Depth < rc.expandBelow {
		for _, link := range page.Links {
			if ctx.Err() != nil {
				return
			}
			e.enqueue(rc, link, it.Depth+1)
		}
	}

	e.finish(rc, it)
}

// fetch tries u once plus the configured retries. Each attempt holds one
// slot of the run-wide gate, so workers and the re-poll together never
// exceed the configured concurrency. Backoff waits hold no slot.
func (e *Engine) fetch(ctx context.Context, rc *runContext, u string) (string, error) {
	retry := rc.opts.Retry
	for n := 0; ; n++ {
		body, err := e.attempt(ctx, rc, u)
		if err == nil || ctx.Err() != nil || n >= retry.Retries {
			return body, err
		}
		e.logger.Debug("retrying page",
			zap.String("url", u),
			zap.Int("retry", n+1),
			zap.Duration("backoff", retry.Delay(n+1)),
			zap.Error(err))
		if err := retry.Wait(ctx, n+1); err != nil {
			return "", err
		}
	}
}

func (e *Engine) attempt(ctx context.Context, rc *runContext, u string) (string, error) {
	if err := rc.gate.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer rc.gate.Release(1)
	return e.fetcher.Fetch(ctx, u, rc.opts.Timeout, rc.handles)
}

// enqueue adds raw to the frontier and announces it. It reports whether a
// new item was created.
func (e *Engine) enqueue(rc *runContext, raw string, depth int) bool {
	rc.emitMu.Lock()
	defer rc.emitMu.Unlock()
	if rc.stopped.Load() {
		return false
	}

	it, ok := rc.frontier.TryEnqueue(raw, depth)
	if !ok {
		return false
	}
	metrics.PagesQueued.Inc()
	e.reporter.PageQueued(it.Row, it.URL)
	e.reporter.Progress(rc.frontier.Completed(), rc.frontier.Planned())
	return true
}

// finish marks it completed and reports progress, signalling Idle when
// nothing planned is left.
func (e *Engine) finish(rc *runContext, it frontier.Item) {
	rc.emitMu.Lock()
	defer rc.emitMu.Unlock()
	if rc.stopped.Load() {
		return
	}

	done, planned := rc.frontier.Complete(it.URL)
	e.reporter.Progress(done, planned)
	if done == planned {
		e.logger.Info("crawl quiescent", zap.Int("pages", done))
		select {
		case rc.idle <- struct{}{}:
		default:
		}
	}
}

// emit runs fn unless the run has been stopped.
func (rc *runContext) emit(fn func()) bool {
	rc.emitMu.Lock()
	defer rc.emitMu.Unlock()
	if rc.stopped.Load() {
		return false
	}
	fn()
	return true
}
