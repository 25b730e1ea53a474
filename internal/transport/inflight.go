package transport

import (
	"context"
	"sync"
)

// Inflight is the run-wide set of cancel handles for outstanding requests.
// AbortAll cancels every one of them so that a stop is prompt. A nil
// *Inflight is valid and tracks nothing.
type Inflight struct {
	mu      sync.Mutex
	next    uint64
	cancels map[uint64]context.CancelFunc
}

func NewInflight() *Inflight {
	return &Inflight{cancels: make(map[uint64]context.CancelFunc)}
}

// Track registers cancel and returns the function that unregisters it.
func (s *Inflight) Track(cancel context.CancelFunc) (release func()) {
	if s == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.next
	s.next++
	s.cancels[id] = cancel
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.cancels, id)
		s.mu.Unlock()
	}
}

// AbortAll cancels and forgets every tracked request. It returns how many
// were aborted.
func (s *Inflight) AbortAll() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = make(map[uint64]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

func (s *Inflight) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}
