package transport

import (
	"context"
	"time"
)

// RetryPolicy says how often a failed page is tried again and how long to
// wait before each retry. The zero value never retries.
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// Delay is the wait before retry n (1-based): Backoff×n.
func (p RetryPolicy) Delay(n int) time.Duration {
	return p.Backoff * time.Duration(n)
}

// Wait sleeps before retry n unless ctx ends first.
func (p RetryPolicy) Wait(ctx context.Context, n int) error {
	d := p.Delay(n)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
