// Package retry wraps a single remote call with a bounded, fixed-delay retry
// loop driven by a pluggable transient-error classifier.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Classifier reports whether err is worth another attempt.
type Classifier func(err error) bool

// Policy bounds a retry loop.
type Policy struct {
	// Attempts is the total number of calls, including the first. Values
	// below 1 are treated as 1.
	Attempts int
	// Delay is slept between consecutive attempts.
	Delay time.Duration
	// Classify decides which errors are retried. Nil means IsTransient.
	Classify Classifier
	// OnRetry is called before each sleep with the attempt that just failed.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy retries transient errors three times, two seconds apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: 2 * time.Second, Classify: IsTransient}
}

// Do calls fn until it succeeds, returns a non-transient error, or the
// attempt bound is reached. The last error is returned wrapped with the
// attempt count when retries were exhausted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for calls that return a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	classify := p.Classify
	if classify == nil {
		classify = IsTransient
	}

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !classify(err) {
			return zero, err
		}
		if attempt >= attempts {
			if attempts == 1 {
				return zero, err
			}
			return zero, fmt.Errorf("after %d attempts: %w", attempts, err)
		}
		if ctx.Err() != nil {
			return zero, err
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		if p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
}
