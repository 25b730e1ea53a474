// Package frontier owns the set of URLs a crawl run knows about and the
// queue of work still to do.
//
// A URL enters the frontier at most once per run. TryEnqueue performs the
// check-and-mark under one lock, so concurrent workers and the home re-poll
// can call it freely without producing duplicates.
package frontier

import (
	"context"
	"sync"
)

// Frontier combines the site scope, the accounted set and the work queue.
type Frontier struct {
	site      Site
	limit     int
	planned   int
	accounted *Accounted
	queue     *Queue
	mu        sync.Mutex
}

// New creates an empty frontier for site. A limit <= 0 means unlimited.
func New(site Site, limit int) *Frontier {
	return &Frontier{
		site:      site,
		limit:     limit,
		accounted: NewAccounted(),
		queue:     NewQueue(),
	}
}

// TryEnqueue canonicalises raw and appends it to the queue unless it is
// already accounted for, out of scope, or the page limit has been reached.
// The returned item carries the assigned row index.
func (f *Frontier) TryEnqueue(raw string, depth int) (Item, bool) {
	u, err := f.site.Canonicalize(raw, "")
	if err != nil || !f.site.IsEligible(u) {
		return Item{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limit > 0 && f.planned >= f.limit {
		return Item{}, false
	}
	if !f.accounted.Add(u) {
		return Item{}, false
	}
	it := Item{URL: u, Depth: depth, Row: f.planned}
	f.planned++
	f.queue.Enqueue(it)
	return it, true
}

// Next blocks until an item is available or ctx is done. The returned item
// is marked in-flight.
func (f *Frontier) Next(ctx context.Context) (Item, bool) {
	for {
		f.mu.Lock()
		it, ok := f.queue.PopFront()
		if ok {
			f.accounted.Advance(it.URL, InFlight)
		}
		more := f.queue.Size() > 0
		f.mu.Unlock()

		if ok {
			if more {
				// pass the wake-up on to the next idle worker
				f.queue.signal()
			}
			return it, true
		}
		if err := f.queue.Wait(ctx); err != nil {
			return Item{}, false
		}
	}
}

// Complete marks u as done and returns the completed and planned counts.
func (f *Frontier) Complete(u string) (done, planned int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounted.Advance(u, Completed)
	return f.accounted.Completed(), f.planned
}

// Has reports whether raw (canonicalised) is already accounted for.
func (f *Frontier) Has(raw string) bool {
	u, err := f.site.Canonicalize(raw, "")
	if err != nil {
		return false
	}
	return f.accounted.Has(u)
}

// State returns the state of raw, if it is accounted for.
func (f *Frontier) State(raw string) (State, bool) {
	u, err := f.site.Canonicalize(raw, "")
	if err != nil {
		return 0, false
	}
	return f.accounted.Get(u)
}

// Planned is the number of URLs ever enqueued (equal to the next row index).
func (f *Frontier) Planned() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.planned
}

func (f *Frontier) Completed() int { return f.accounted.Completed() }

// Pending is the number of queued items not yet handed to a worker.
func (f *Frontier) Pending() int { return f.queue.Size() }

// URLs returns every accounted URL, sorted.
func (f *Frontier) URLs() []string { return f.accounted.URLs() }
