// Package retry runs operations under a bounded retry policy.
package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/pkordes/travel-guide/internal/domain"
)

// Policy bounds how often an operation is re-attempted.
// MaxRetries counts re-attempts, so an operation runs at most MaxRetries+1
// times. Only errors accepted by Retryable are retried.
type Policy struct {
	MaxRetries uint64
	Backoff    time.Duration
	Retryable  func(error) bool
}

// Default retries transient store failures three times, one second apart.
func Default() Policy {
	return Policy{
		MaxRetries: 3,
		Backoff:    time.Second,
		Retryable:  domain.IsTransient,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, the retry
// budget is spent, or ctx is done. The last error from fn is returned
// unwrapped.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	backoff := goretry.WithMaxRetries(p.MaxRetries, goretry.NewConstant(p.Backoff))
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && p.Retryable(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
}
