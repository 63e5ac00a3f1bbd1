package livecookie

import (
	"context"
	"time"
)

const retryBaseDelay = 500 * time.Millisecond

// sleepContext is a test seam for every backoff and settle sleep.
var sleepContext = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withRetry runs fn up to maxAttempts times. Attempt 0 runs immediately;
// attempt n waits retryBaseDelay*2^(n-1) first. It wraps only the
// network-bound protocol call: process orchestration and crypto failures are
// not transient and must not come through here.
func withRetry(ctx context.Context, maxAttempts int, onAttempt func(attempt int, err error), fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			if err := sleepContext(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if onAttempt != nil {
			onAttempt(attempt+1, lastErr)
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}
