package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound requests. A token bucket refilling at the
// per-minute rate handles proactive spacing; a reactive hold window honors
// Retry-After whenever the API answers 429. One token is one request.
type RateLimiter struct {
	perMinute int
	bucket    *rate.Limiter

	mu            sync.Mutex
	holdUntil     time.Time
	last429       time.Time
	totalConsumed int64
	totalWaited   time.Duration
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	Last429         time.Time     `json:"last_429,omitempty"`
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests. The
// bucket starts full so short runs never wait.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		perMinute: requestsPerMinute,
		bucket:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
	}
}

// Wait blocks until a request may proceed or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()

	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	for {
		r.mu.Lock()
		hold := time.Until(r.holdUntil)
		r.mu.Unlock()
		if hold <= 0 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(hold):
		}
	}

	r.mu.Lock()
	r.totalConsumed++
	r.totalWaited += time.Since(start)
	r.mu.Unlock()
	return nil
}

// Record429 drains the bucket after a rate limit response. A positive
// retryAfter additionally holds all requests until that window expires.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.last429 = now
	if tokens := int(r.bucket.Tokens()); tokens > 0 {
		r.bucket.AllowN(now, tokens)
	}
	if retryAfter > 0 {
		r.holdUntil = now.Add(retryAfter)
	}
}

// Status returns a snapshot of the limiter.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := int(r.bucket.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	return RateLimiterStatus{
		TokensAvailable: tokens,
		TokensLimit:     r.perMinute,
		TotalConsumed:   r.totalConsumed,
		TotalWaited:     r.totalWaited,
		Last429:         r.last429,
	}
}
