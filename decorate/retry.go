package decorate

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/use-agent/koans/metrics"
)

// Matcher selects which errors a Retry wrapper retries.
type Matcher func(error) bool

// MatchAll retries every error.
func MatchAll(error) bool { return true }

// MatchIs retries errors for which errors.Is(err, target) holds.
func MatchIs(target error) Matcher {
	return func(err error) bool { return errors.Is(err, target) }
}

// MatchAs retries errors whose chain contains an error of type E.
func MatchAs[E error]() Matcher {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// MatchAny retries errors accepted by at least one of matchers.
func MatchAny(matchers ...Matcher) Matcher {
	return func(err error) bool {
		for _, m := range matchers {
			if m(err) {
				return true
			}
		}
		return false
	}
}

// Backoff describes the delay between attempts. The zero value sleeps not at
// all.
type Backoff struct {
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// delay returns the wait before retry number attempt (0-based).
func (b Backoff) delay(attempt int) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	multiple := b.BackoffMultiple
	if multiple < 1 {
		multiple = 1
	}
	d := float64(b.InitialDelay) * math.Pow(multiple, float64(attempt))
	if b.MaxDelay > 0 && d > float64(b.MaxDelay) {
		d = float64(b.MaxDelay)
	}
	return time.Duration(d)
}

type retryConfig struct {
	match    Matcher
	backoff  Backoff
	observer func(attempt int, err error)
}

// RetryOption configures Retry.
type RetryOption func(*retryConfig)

// On restricts retries to errors accepted by m. Other errors are returned
// immediately.
func On(m Matcher) RetryOption {
	return func(c *retryConfig) { c.match = m }
}

// WithBackoff sleeps between attempts, starting at initial and growing by
// multiple up to maxDelay.
func WithBackoff(initial, maxDelay time.Duration, multiple float64) RetryOption {
	return func(c *retryConfig) {
		c.backoff = Backoff{InitialDelay: initial, MaxDelay: maxDelay, BackoffMultiple: multiple}
	}
}

// WithObserver calls fn after every retryable failure with the 1-based
// attempt number.
func WithObserver(fn func(attempt int, err error)) RetryOption {
	return func(c *retryConfig) { c.observer = fn }
}

// Retry returns a Decorator that makes up to nTimes+1 attempts per call.
//
// A successful attempt returns immediately. An error accepted by the matcher
// (every error unless On is given) triggers another attempt; any other error
// is returned as is without retrying. When all attempts fail with retryable
// errors the call fails with a *RetriesExhaustedError. A cancelled context
// stops the loop and its error is returned, on the last attempt too.
func Retry[A, R any](nTimes int, opts ...RetryOption) Decorator[A, R] {
	cfg := retryConfig{match: MatchAll}
	for _, opt := range opts {
		opt(&cfg)
	}
	if nTimes < 0 {
		nTimes = 0
	}
	attempts := nTimes + 1

	return func(c *Callable[A, R]) *Callable[A, R] {
		name := c.Name()
		return c.wrap(func(ctx context.Context, arg A) (R, error) {
			var zero R
			var lastErr error

			for attempt := 0; attempt < attempts; attempt++ {
				metrics.DecoratorEvents.WithLabelValues(name, metrics.EventRetryAttempt).Inc()
				result, err := c.Call(ctx, arg)
				if err == nil {
					return result, nil
				}
				if !cfg.match(err) {
					metrics.DecoratorEvents.WithLabelValues(name, metrics.EventRetryBypassed).Inc()
					return zero, err
				}
				lastErr = err
				if cfg.observer != nil {
					cfg.observer(attempt+1, err)
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					return zero, ctxErr
				}
				if attempt == attempts-1 {
					break
				}

				delay := cfg.backoff.delay(attempt)
				slog.Debug("retrying call",
					"callable", name,
					"attempt", attempt+1,
					"of", attempts,
					"delay", delay,
					"error", err,
				)
				if delay > 0 {
					timer := time.NewTimer(delay)
					select {
					case <-ctx.Done():
						timer.Stop()
						return zero, ctx.Err()
					case <-timer.C:
					}
				}
			}

			metrics.DecoratorEvents.WithLabelValues(name, metrics.EventRetryExhaust).Inc()
			return zero, &RetriesExhaustedError{Name: name, Attempts: attempts, Last: lastErr}
		})
	}
}
