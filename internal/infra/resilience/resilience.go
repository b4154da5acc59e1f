// Package resilience provides fault-tolerance patterns:
// fixed-delay retry, circuit breaker, and bulkhead.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds resilience parameters.
type Config struct {
	MaxRetries     int
	RetryDelay     time.Duration
	MaxConcurrency int
}

// Retry runs fn until it succeeds, returns an error shouldRetry rejects,
// or MaxRetries extra attempts were made. Attempts are sequential and wait
// RetryDelay in between. It returns the number of attempts made.
// It respects context cancellation.
func Retry(ctx context.Context, cfg Config, shouldRetry func(error) bool, fn func(attempt int) error) (int, error) {
	var lastErr error
	attempt := 0
	for attempt <= cfg.MaxRetries {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		lastErr = fn(attempt)
		attempt++
		if lastErr == nil || !shouldRetry(lastErr) {
			return attempt, lastErr
		}

		if attempt <= cfg.MaxRetries {
			timer := time.NewTimer(cfg.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return attempt, lastErr
}

// NewCircuitBreaker creates a circuit breaker with sensible defaults.
// isSuccessful decides which errors count against the breaker; nil
// counts every error.
func NewCircuitBreaker(name string, isSuccessful func(error) bool) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: isSuccessful,
	})
}

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or context is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}
