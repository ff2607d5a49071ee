package crawler

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter caps navigations per host across every session of a platform
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perSec   float64
	burst    int
}

// NewRateLimiter creates a limiter allowing perSec navigations per host.
// perSec <= 0 disables limiting.
func NewRateLimiter(perSec float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perSec:   perSec,
		burst:    burst,
	}
}

// Wait blocks until a navigation to rawURL's host is allowed or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	if rl == nil || rl.perSec <= 0 {
		return ctx.Err()
	}

	host := extractHost(rawURL)
	if host == "" {
		return ctx.Err()
	}

	return rl.limiterFor(host).Wait(ctx)
}

// Enabled reports whether navigations are being limited
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.perSec > 0
}

func (rl *RateLimiter) limiterFor(host string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(rl.perSec), rl.burst)
		rl.limiters[host] = limiter
	}
	return limiter
}

// extractHost parses the host from a URL
func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
