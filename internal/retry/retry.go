// Package retry wraps fallible operations with a bounded number of attempts
// and a constant inter-attempt delay. There is no backoff growth.
package retry

import (
	"context"
	"fmt"
	"time"
)

// sleep is swappable so tests can count sleeps without waiting.
var sleep = time.Sleep

// Operation is a fallible unit of work.
type Operation func() error

// ExhaustedError reports that every attempt failed. It wraps the final
// attempt's error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do invokes op up to attempts times, sleeping delay between failed attempts.
// It returns nil as soon as an attempt succeeds, and an *ExhaustedError once
// all attempts are spent. attempts < 1 is treated as a single attempt.
func Do(op Operation, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt < attempts {
			sleep(delay)
		}
	}
	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](op func() (T, error), attempts int, delay time.Duration) (T, error) {
	var result T
	err := Do(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, attempts, delay)
	return result, err
}

// DoCtx is Do with cancellation between attempts. The in-flight attempt is
// not interrupted; ctx is checked before each sleep and retry.
func DoCtx(ctx context.Context, op Operation, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}
