package retry

import (
	"context"
	"time"
)

// DoWithRetry runs fn until it succeeds, up to attempts times, doubling
// the delay between tries. The context cancels both the wait and any
// further attempts; the last error from fn is returned otherwise.
func DoWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(baseDelay << i):
			}
		}
	}
	return err
}
