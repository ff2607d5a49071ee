package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ternarybob/arbor"
)

// RetryPolicy defines how many times an operation runs and the linear backoff between runs
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns 3 attempts with a 1s base delay
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// normalize clamps values that would disable the executor
func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	return p
}

// LinearBackOff waits base*n before the n-th retry
type LinearBackOff struct {
	Base time.Duration
	n    int
}

// NextBackOff implements backoff.BackOff
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.Base * time.Duration(b.n)
}

// Reset implements backoff.BackOff
func (b *LinearBackOff) Reset() {
	b.n = 0
}

// Retry runs op until it succeeds, the attempts are exhausted, the error is
// wrapped with backoff.Permanent, or ctx is done. The last op error is returned
// on exhaustion; ctx.Err() is returned on cancellation.
func Retry[T any](ctx context.Context, policy RetryPolicy, logger arbor.ILogger, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	policy = policy.normalize()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	attempt := 0
	operation := func() error {
		attempt++
		value, err := op(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", policy.MaxAttempts).
			Dur("retry_in", wait).
			Msg("Operation failed, retrying")
	}

	var schedule backoff.BackOff = &backoff.StopBackOff{}
	if policy.MaxAttempts > 1 {
		schedule = backoff.WithMaxRetries(&LinearBackOff{Base: policy.BaseDelay}, uint64(policy.MaxAttempts-1))
	}
	b := backoff.WithContext(schedule, ctx)

	err := backoff.RetryNotify(operation, b, notify)
	if ctxErr := ctx.Err(); ctxErr != nil {
		var zero T
		return zero, ctxErr
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed after %d attempt(s): %w", attempt, err)
	}

	return result, nil
}
