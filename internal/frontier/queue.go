package frontier

import (
	"context"
	"sync"
)

// Item is one unit of crawl work.
type Item struct {
	URL   string
	Depth int
	// Row is the stable display slot assigned at enqueue time.
	Row int
}

// Queue is a FIFO of crawl items. Consumers block in Wait instead of
// polling; every push leaves a wake-up token in ready.
type Queue struct {
	elements []Item
	ready    chan struct{}
	mu       sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		elements: make([]Item, 0),
		ready:    make(chan struct{}, 1),
	}
}

func (q *Queue) Enqueue(it Item) {
	q.mu.Lock()
	q.elements = append(q.elements, it)
	q.mu.Unlock()
	q.signal()
}

// PopFront removes the oldest item.
func (q *Queue) PopFront() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.elements) == 0 {
		return Item{}, false
	}
	it := q.elements[0]
	q.elements[0] = Item{}
	q.elements = q.elements[1:]
	return it, true
}

// Wait blocks until something may have been enqueued or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ready:
		return nil
	}
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.elements)
}
