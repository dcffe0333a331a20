package harvest

import (
	"context"
	"time"
)

// Defaults applied when a Policy or Harvester field is left at zero.
const (
	DefaultMaxAttempts    = 3
	DefaultBackoff        = 2 * time.Second
	DefaultAttemptTimeout = 60 * time.Second
	DefaultItemDelay      = 300 * time.Millisecond
)

// Policy controls how a single unit of work is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff is the fixed delay between attempts. Zero selects
	// DefaultBackoff; a negative value disables it.
	Backoff time.Duration

	// AttemptTimeout bounds each attempt. Zero selects DefaultAttemptTimeout;
	// a negative value means no per-attempt timeout.
	AttemptTimeout time.Duration
}

// DefaultPolicy returns 3 attempts, 2s apart, each bounded to 60s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		Backoff:        DefaultBackoff,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Backoff == 0 {
		p.Backoff = def.Backoff
	}
	if p.AttemptTimeout == 0 {
		p.AttemptTimeout = def.AttemptTimeout
	}
	return p
}

// AttemptFunc performs one attempt. The context carries the attempt timeout.
type AttemptFunc func(ctx context.Context) error

// RetryHook is called after a failed attempt that will be retried.
// Attempts are numbered from 1.
type RetryHook func(attempt int, err error)

// Retry runs fn until it succeeds or the policy's attempts are exhausted.
// Every attempt error is treated as transient. It returns the error of the
// last attempt, or the parent context's error if it is done.
func Retry(ctx context.Context, p Policy, fn AttemptFunc, onRetry RetryHook) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = runAttempt(ctx, p.AttemptTimeout, fn)
		if lastErr == nil {
			return nil
		}

		// A canceled run is not a failed attempt.
		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		if err := sleep(ctx, p.Backoff); err != nil {
			return err
		}
	}

	return lastErr
}

func runAttempt(ctx context.Context, timeout time.Duration, fn AttemptFunc) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
