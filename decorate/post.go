package decorate

import (
	"context"

	"github.com/use-agent/koans/metrics"
)

// Post returns a Decorator that checks cond against every result of the
// wrapped callable.
//
// The callable runs exactly once per call. A result for which cond is false
// never reaches the caller: the call fails with a *PostconditionError instead.
// Errors from the callable itself are returned unchanged and cond is not
// evaluated.
func Post[A, R any](cond func(R) bool) Decorator[A, R] {
	return func(c *Callable[A, R]) *Callable[A, R] {
		return c.wrap(func(ctx context.Context, arg A) (R, error) {
			result, err := c.Call(ctx, arg)
			if err != nil {
				return result, err
			}
			if !cond(result) {
				metrics.DecoratorEvents.WithLabelValues(c.Name(), metrics.EventPostFailed).Inc()
				var zero R
				return zero, &PostconditionError{Name: c.Name(), Result: result}
			}
			return result, nil
		})
	}
}
