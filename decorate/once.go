package decorate

import (
	"context"
	"sync"

	"github.com/use-agent/koans/metrics"
)

// onceCell is the memoization state owned by a single Once wrapper.
// running is non-nil while a call to the wrapped callable is in flight and
// is closed when it returns.
type onceCell[R any] struct {
	mu      sync.Mutex
	done    bool
	result  R
	running chan struct{}
}

// Once returns a Callable that invokes c on its first call and returns the
// stored result on every later call without invoking c again.
//
// Only successful results are stored. If c returns an error (or panics), the
// error propagates and the next call invokes c again. While c runs, other
// callers wait for it and give up when their own ctx is done; c runs at most
// once per successful memoization. A c that calls its own wrapper waits on
// itself until ctx is done.
func Once[R any](c *Callable[struct{}, R]) *Callable[struct{}, R] {
	cell := &onceCell[R]{}
	name := c.Name()

	return c.wrap(func(ctx context.Context, arg struct{}) (R, error) {
		var zero R
		for {
			cell.mu.Lock()
			if cell.done {
				cell.mu.Unlock()
				metrics.DecoratorEvents.WithLabelValues(name, metrics.EventOnceHit).Inc()
				return cell.result, nil
			}
			running := cell.running
			if running == nil {
				cell.running = make(chan struct{})
				cell.mu.Unlock()
				metrics.DecoratorEvents.WithLabelValues(name, metrics.EventOnceMiss).Inc()
				return cell.run(ctx, c, arg)
			}
			cell.mu.Unlock()

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-running:
			}
		}
	})
}

// run calls c and publishes its result if it succeeded. Waiters are woken
// even when c panics.
func (cell *onceCell[R]) run(ctx context.Context, c *Callable[struct{}, R], arg struct{}) (R, error) {
	var (
		result R
		err    error
		ok     bool
	)
	defer func() {
		cell.mu.Lock()
		if ok {
			cell.result, cell.done = result, true
		}
		close(cell.running)
		cell.running = nil
		cell.mu.Unlock()
	}()

	result, err = c.Call(ctx, arg)
	if err != nil {
		var zero R
		return zero, err
	}
	ok = true
	return result, nil
}
