// Package retry provides a reusable bounded-retry policy with exponential
// backoff and jitter, shared by the outbound API client and the transcript
// fetch path.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes how an operation is retried. The zero value is not usable;
// construct with NewPolicy or fill every field.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	JitterFrac  float64
	// Retryable decides whether a failure is worth another attempt. A nil
	// predicate retries everything.
	Retryable func(error) bool

	// sleep is overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy builds a Policy with the pipeline defaults: doubling backoff capped
// at 8s with 20% jitter.
func NewPolicy(maxAttempts int, baseDelay time.Duration, retryable func(error) bool) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    8 * time.Second,
		JitterFrac:  0.2,
		Retryable:   retryable,
	}
}

// Delay returns the backoff delay for the given zero-based attempt, including
// random jitter.
func (p *Policy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay << uint(attempt)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	if p.JitterFrac > 0 {
		jitter := time.Duration(rand.Float64() * p.JitterFrac * float64(delay))
		delay += jitter
	}
	return delay
}

// Do runs fn up to MaxAttempts times, sleeping with backoff between attempts.
// It stops early when fn succeeds, when the failure is not retryable, or when
// ctx is done; the last error is returned.
func (p *Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		if err := p.wait(ctx, p.Delay(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func (p *Policy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
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
