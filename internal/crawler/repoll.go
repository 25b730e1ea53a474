package crawler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sitecrawl/internal/metrics"
)

// repoll re-scans the home page every interval until the run ends. Ticks
// that arrive while a scan is still running are dropped by the ticker, so
// scans never overlap.
func (e *Engine) repoll(ctx context.Context, rc *runContext) {
	ticker := time.NewTicker(e.repollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.refreshHome(ctx, rc)
		}
	}
}

// refreshHome fetches the home page and enqueues links the run has not
// seen yet at depth 1. Known pages are never fetched again.
func (e *Engine) refreshHome(ctx context.Context, rc *runContext) int {
	home := rc.site.Home
	body, err := e.fetch(ctx, rc, home)
	if ctx.Err() != nil {
		return 0
	}
	if err != nil {
		e.logger.Warn("home re-poll failed", zap.String("url", home), zap.Error(err))
		return 0
	}
	page, err := e.extractor.Extract(body, home)
	if err != nil {
		e.logger.Warn("home re-poll unparsable", zap.String("url", home), zap.Error(err))
		return 0
	}

	added := 0
	for _, link := range page.Links {
		if added >= e.maxNewPerTick || ctx.Err() != nil {
			break
		}
		if rc.frontier.Has(link) {
			continue
		}
		if e.enqueue(rc, link, ExpandDepth) {
			added++
		}
	}

	if added > 0 {
		metrics.RepollDiscovered.Add(float64(added))
		e.logger.Info("home re-poll found new pages", zap.Int("added", added))
	} else {
		e.logger.Debug("home re-poll found nothing new")
	}
	return added
}
