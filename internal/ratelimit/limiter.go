// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequests and DefaultWindow match the webhook allowance of the
	// common chat services (5 requests per 2 seconds per webhook)
	DefaultRequests = 5
	DefaultWindow   = 2 * time.Second
)

// HostLimiter keeps one token bucket per destination host. A host that
// answered 429 is additionally blocked until its Retry-After has passed.
type HostLimiter struct {
	limiters     map[string]*rate.Limiter
	blockedUntil map[string]time.Time
	mu           sync.Mutex
	perHost      rate.Limit
	burst        int
}

// NewHostLimiter allows n requests per window to each host
func NewHostLimiter(n int, window time.Duration) *HostLimiter {
	if n <= 0 {
		n = DefaultRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &HostLimiter{
		limiters:     make(map[string]*rate.Limiter),
		blockedUntil: make(map[string]time.Time),
		perHost:      rate.Every(window / time.Duration(n)),
		burst:        n,
	}
}

// Wait blocks until the request for the given URL can proceed
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	host := extractHost(urlStr)
	if host == "" {
		// Invalid URL, let it proceed (the request will fail on its own)
		return nil
	}
	if err := hl.waitBlocked(ctx, host); err != nil {
		return err
	}
	return hl.get(host).Wait(ctx)
}

// Penalize blocks a host for d, used after a 429. A later, longer penalty
// extends the block; a shorter one never shortens it.
func (hl *HostLimiter) Penalize(urlStr string, d time.Duration) {
	host := extractHost(urlStr)
	if host == "" || d <= 0 {
		return
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	until := time.Now().Add(d)
	if until.After(hl.blockedUntil[host]) {
		hl.blockedUntil[host] = until
	}
}

func (hl *HostLimiter) waitBlocked(ctx context.Context, host string) error {
	hl.mu.Lock()
	until, ok := hl.blockedUntil[host]
	hl.mu.Unlock()
	if !ok {
		return nil
	}

	d := time.Until(until)
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (hl *HostLimiter) get(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	limiter, ok := hl.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(hl.perHost, hl.burst)
		hl.limiters[host] = limiter
	}
	return limiter
}

// extractHost extracts the host from a URL string
func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
