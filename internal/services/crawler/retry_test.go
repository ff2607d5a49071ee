package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

var errFlaky = errors.New("flaky navigation")

func TestLinearBackOff(t *testing.T) {
	b := &LinearBackOff{Base: 100 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	logger := arbor.NewLogger()
	calls := 0

	got, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, logger,
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errFlaky
			}
			return "<html></html>", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "<html></html>", got)
	assert.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	logger := arbor.NewLogger()
	calls := 0
	errLast := errors.New("last failure")

	_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, logger,
		func(ctx context.Context) (int, error) {
			calls++
			if calls == 3 {
				return 0, errLast
			}
			return 0, errFlaky
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, errLast)
	assert.Equal(t, 3, calls)
}

func TestRetry_LinearDelayBetweenAttempts(t *testing.T) {
	logger := arbor.NewLogger()
	base := 20 * time.Millisecond

	start := time.Now()
	_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: base}, logger,
		func(ctx context.Context) (int, error) {
			return 0, errFlaky
		})
	elapsed := time.Since(start)

	require.Error(t, err)
	// base*1 + base*2
	assert.GreaterOrEqual(t, elapsed, 3*base)
}

func TestRetry_PermanentErrorStopsImmediately(t *testing.T) {
	logger := arbor.NewLogger()
	calls := 0
	errFatal := errors.New("fatal")

	_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}, logger,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, backoff.Permanent(errFatal)
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsOnCancellation(t *testing.T) {
	logger := arbor.NewLogger()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Retry(ctx, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}, logger,
		func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, errFlaky
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetry_AlreadyCancelled(t *testing.T) {
	logger := arbor.NewLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := Retry(ctx, DefaultRetryPolicy(), logger, func(ctx context.Context) (int, error) {
		called = true
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	logger := arbor.NewLogger()
	calls := 0

	_, err := Retry(context.Background(), RetryPolicy{}, logger, func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}
