package client

import (
	"context"
	"time"
)

// RateLimiter paces outbound calls to the external registries. A single
// limiter is shared by both clients so the combined request rate stays
// below the registries' tolerance.
type RateLimiter struct {
	ticker   *time.Ticker
	requests chan struct{}
	quit     chan struct{}
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond calls
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	interval := time.Duration(float64(time.Second) / requestsPerSecond)

	rl := &RateLimiter{
		ticker:   time.NewTicker(interval),
		requests: make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}

	// Prime the channel so the first request never waits
	rl.requests <- struct{}{}

	go func() {
		for {
			select {
			case <-rl.ticker.C:
				select {
				case rl.requests <- struct{}{}:
				default:
				}
			case <-rl.quit:
				return
			}
		}
	}()

	return rl
}

// Wait blocks until rate limit allows next request
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.requests:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the rate limiter and releases its feeding goroutine
func (rl *RateLimiter) Stop() {
	rl.ticker.Stop()
	close(rl.quit)
}
