// Package retry holds the bounded retry combinator used around
// read-then-write sequences that race on unique constraints.
package retry

import (
	"context"
	"fmt"
)

// Do calls fn up to maxAttempts times. It stops at the first success, at the
// first error isRetryable rejects, or when ctx is done. attempt is 1-based so
// fn can regenerate its candidate value each time.
func Do(ctx context.Context, maxAttempts int, isRetryable func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return fmt.Errorf("%w (after %d attempts: %v)", ctxErr, attempt-1, err)
			}
			return ctxErr
		}
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, err)
}
