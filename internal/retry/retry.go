// Package retry provides a bounded exponential backoff policy for calls to
// external services. Transient-vs-fatal classification is supplied by the
// caller so one policy covers both embedding and index writes.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes a bounded retry schedule.
type Policy struct {
	// MaxAttempts is the hard attempt ceiling, including the first call.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; each further attempt
	// doubles it.
	BaseDelay time.Duration
}

// Default mirrors the pipeline's standard schedule: 3 attempts, 1s base.
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs fn until it succeeds, the attempt ceiling is reached, the context
// is canceled, or retryable rejects the error. The last error is returned
// annotated with the attempt count when retries were exhausted.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// wait sleeps for the backoff delay of the given attempt, honoring ctx.
func (p Policy) wait(ctx context.Context, attempt int) error {
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	delay <<= attempt - 1

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
