// Package resilience holds the fixed-budget retry used around network calls.
package resilience

import (
	"context"
	"time"

	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/logger"
)

// Policy controls retry with exponential backoff.
type Policy struct {
	// Tries is the total number of invocations, the last one unguarded. Default: 3.
	Tries int

	// Delay is the sleep before the first retry. Default: 500ms.
	Delay time.Duration

	// Backoff multiplies the delay after each retry. Default: 2.
	Backoff float64

	// Retryable decides which errors consume the budget. If nil, IsRetryable is used.
	Retryable func(err error) bool

	// OnRetry is called before each sleep with the retry number and the error.
	OnRetry func(retry int, err error)

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy is 3 tries, 500ms initial delay, doubling, retrying on HTTP errors.
func DefaultPolicy() Policy {
	return Policy{
		Tries:   3,
		Delay:   500 * time.Millisecond,
		Backoff: 2,
	}
}

// IsRetryable reports whether err is a transient HTTP failure.
func IsRetryable(err error) bool {
	return errs.IsHTTPError(err)
}

// Do runs fn under p. While more than one try remains, retryable errors are
// swallowed and followed by a sleep; the final try's error is returned as is.
// Non-retryable errors and context cancellation end the loop immediately.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions returning a value.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = applyDefaults(p)

	tries, delay := p.Tries, p.Delay
	for retry := 1; tries > 1; retry++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		if !p.Retryable(err) {
			return val, err
		}

		if p.OnRetry != nil {
			p.OnRetry(retry, err)
		}
		if serr := p.sleep(ctx, delay); serr != nil {
			return val, err
		}
		tries--
		delay = time.Duration(float64(delay) * p.Backoff)
	}

	return fn(ctx)
}

func applyDefaults(p Policy) Policy {
	if p.Tries <= 0 {
		p.Tries = 3
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Backoff <= 0 {
		p.Backoff = 2
	}
	if p.Retryable == nil {
		p.Retryable = IsRetryable
	}
	if p.sleep == nil {
		p.sleep = sleepCtx
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryLogger returns an OnRetry callback that logs each retry under component.
func RetryLogger(component, operation string) func(int, error) {
	l := logger.WithComponent(component)
	return func(retry int, err error) {
		l.Warn().
			Str("operation", operation).
			Int("retry", retry).
			Err(err).
			Msg("Retrying operation.")
	}
}
