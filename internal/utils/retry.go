package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rxtech-lab/tradelog/pkg/errors"
)

// Retry runs fn with exponential backoff until it succeeds, the attempt
// budget is exhausted, or the context is cancelled. Errors classified as
// permanent by errors.IsPermanent stop the retry loop immediately.
func Retry(ctx context.Context, maxAttempts uint64, initialInterval time.Duration, fn func() error) error {
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval

	// maxAttempts counts total attempts, backoff counts retries after the first.
	wrapped := backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx)

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}

		if errors.IsPermanent(err) {
			return backoff.Permanent(err)
		}

		return err
	}, wrapped)
}
