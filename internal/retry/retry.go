// Package retry runs store operations with a per-attempt timeout and
// exponential backoff, reporting an explicit result instead of logging and
// moving on.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy controls how an operation is retried.
type Policy struct {
	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout time.Duration
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// Permanent reports errors that must not be retried.
	Permanent func(error) bool
}

// DefaultPolicy is used when no policy is configured.
var DefaultPolicy = Policy{
	Timeout:         5 * time.Second,
	MaxAttempts:     3,
	InitialInterval: 100 * time.Millisecond,
}

// Result describes the outcome of a retried operation.
type Result struct {
	Op       string
	Attempts int
	Err      error
}

// OK reports whether the operation eventually succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Do runs fn until it succeeds, fails permanently, runs out of attempts, or
// ctx is done.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) Result {
	res := Result{Op: op}

	attempt := func() error {
		res.Attempts++
		actx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}
		err := fn(actx)
		if err == nil {
			return nil
		}
		if p.isPermanent(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	res.Err = backoff.Retry(attempt, p.backOff(ctx))
	return res
}

func (p Policy) isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	return p.Permanent != nil && p.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	eb.MaxElapsedTime = 0
	eb.Reset()

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}
