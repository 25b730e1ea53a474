package frontier

import (
	"sort"
	"sync"
)

// State is where an accounted URL currently sits.
type State uint8

const (
	Queued State = iota + 1
	InFlight
	Completed
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case InFlight:
		return "in-flight"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Accounted is the set of every URL seen in a run. Membership only grows;
// the state of a member moves forward queued -> in-flight -> completed.
type Accounted struct {
	set       map[string]State
	completed int
	mu        sync.Mutex
}

func NewAccounted() *Accounted {
	return &Accounted{
		set: make(map[string]State),
	}
}

// Add records u as queued. It returns false if u was already present.
func (a *Accounted) Add(u string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.set[u]; ok {
		return false
	}
	a.set[u] = Queued
	return true
}

// Advance moves u to st. Going backwards or advancing an unknown URL is a no-op.
func (a *Accounted) Advance(u string, st State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	cur, ok := a.set[u]
	if !ok || st <= cur {
		return false
	}
	a.set[u] = st
	if st == Completed {
		a.completed++
	}
	return true
}

func (a *Accounted) Get(u string) (State, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.set[u]
	return st, ok
}

func (a *Accounted) Has(u string) bool {
	_, ok := a.Get(u)
	return ok
}

func (a *Accounted) Completed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.completed
}

// URLs returns every accounted URL, sorted.
func (a *Accounted) URLs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.set))
	for u := range a.set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
