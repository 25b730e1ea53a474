package crawler

import (
	"time"

	"sitecrawl/internal/transport"
)

const (
	// MaxConcurrency is the hard ceiling on workers and outstanding fetches.
	MaxConcurrency = 10
	// ExpandDepth is the deepest page whose links are followed. Pages found
	// on the home page are recorded but never expanded further.
	ExpandDepth = 1
	// DefaultRepollInterval is how often the home page is re-scanned.
	DefaultRepollInterval = 30 * time.Second
	// DefaultMaxNewPerTick bounds how many URLs one re-poll may enqueue.
	DefaultMaxNewPerTick = 1000
)

// Options are the per-run settings supplied to Start.
type Options struct {
	// MaxDepth is clamped to ExpandDepth; values <= 0 mean ExpandDepth.
	MaxDepth int
	// PageLimit caps the number of URLs ever enqueued; <= 0 is unlimited.
	PageLimit int
	// Timeout bounds each transport attempt; zero uses the fetcher default.
	Timeout time.Duration
	// Concurrency is clamped to [1, MaxConcurrency].
	Concurrency int
	// Retry is applied per page. A page gives its fetch slot back while it
	// waits for the next attempt.
	Retry transport.RetryPolicy
}

func (o Options) workers() int {
	return clamp(o.Concurrency, 1, MaxConcurrency)
}

// expandBelow returns the depth under which links are followed.
func (o Options) expandBelow() int {
	d := o.MaxDepth
	if d <= 0 {
		d = ExpandDepth
	}
	return min(ExpandDepth, d)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
