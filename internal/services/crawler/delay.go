package crawler

import (
	"context"
	"time"
)

const (
	// DelayStep is added per page after the first
	DelayStep = 100 * time.Millisecond
	// MaxDelay is the hard ceiling of CalculateDelay
	MaxDelay = 1500 * time.Millisecond
)

// CalculateDelay returns the settle time after loading pageNumber.
// The first page is fast; deeper pages back off linearly up to MaxDelay.
func CalculateDelay(base time.Duration, pageNumber int) time.Duration {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if base < 0 {
		base = 0
	}

	delay := base + time.Duration(pageNumber-1)*DelayStep
	if delay > MaxDelay {
		return MaxDelay
	}
	return delay
}

// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case
func Sleep(ctx context.Context, d time.Duration) error {
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
