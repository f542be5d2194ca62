package llm

import (
	"context"
	"errors"
	"time"

	"github.com/provenia/provenia/internal/model"
)

// retrySleepFunc is the sleep function used between retries (injectable for tests)
var retrySleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

const retryBaseDelay = 500 * time.Millisecond

// withRetries runs fn up to maxRetries+1 times with exponential backoff.
// Only transient failures (timeouts, provider errors) are retried; a
// cancelled context stops immediately.
func withRetries(ctx context.Context, maxRetries int, fn func() error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	delay := retryBaseDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := retrySleepFunc(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
		if !errors.Is(lastErr, model.ErrProviderTimeout) && !errors.Is(lastErr, model.ErrProviderError) {
			return lastErr
		}
	}

	return lastErr
}
