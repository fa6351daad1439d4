package fetch

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter: at most maxRequests requests per
// window. Safe for concurrent use, though the scrape pipeline is sequential.
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	requests []time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per window.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{maxRequests: maxRequests, window: window}
}

// Wait blocks until a request slot is available or the context is canceled.
// It returns how long it waited.
func (r *RateLimiter) Wait(ctx context.Context) (time.Duration, error) {
	r.mu.Lock()
	now := time.Now()
	r.prune(now)

	var sleep time.Duration
	if len(r.requests) >= r.maxRequests {
		sleep = r.window - now.Sub(r.requests[0])
	}
	r.mu.Unlock()

	if sleep > 0 {
		timer := time.NewTimer(sleep)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}

	r.mu.Lock()
	r.requests = append(r.requests, time.Now())
	r.mu.Unlock()
	return sleep, nil
}

// CurrentRate returns the number of requests made in the last minute.
func (r *RateLimiter) CurrentRate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-time.Minute)
	n := 0
	for _, t := range r.requests {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

// prune drops entries older than the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.requests) && !r.requests[i].After(cutoff) {
		i++
	}
	r.requests = r.requests[i:]
}
