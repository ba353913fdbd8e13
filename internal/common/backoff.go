package common

import (
	"context"
	"time"
)

// Backoff returns the exponential delay before retry attempt n (1-based):
// base, 2*base, 4*base, ... capped at 30s.
func Backoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	d := base << (attempt - 1)
	if max := 30 * time.Second; d > max {
		d = max
	}
	return d
}

// SleepCtx waits for d or until ctx is done, returning ctx.Err() in the
// latter case so cancellation interrupts a backoff wait immediately.
func SleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
