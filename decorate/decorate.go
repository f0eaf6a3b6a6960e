// Package decorate provides function combinators that wrap a callable with a
// single cross-cutting behavior: memoize the first result (Once), assert a
// postcondition on every result (Post) and retry on selected errors (Retry).
//
// Combinators operate on *Callable values so the wrapped function's identity
// (Meta) survives decoration, and decorators can be stacked with Apply.
package decorate

import "context"

// Meta is the externally visible identity of a callable.
type Meta struct {
	Name string
	Doc  string
}

// Func is the shape of every decorated function. Callables taking several
// arguments pass them as a struct; callables taking none use struct{}.
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

// Callable is a function paired with its identity.
type Callable[A, R any] struct {
	meta Meta
	fn   Func[A, R]
}

// New wraps fn as a Callable named name with documentation doc.
func New[A, R any](name, doc string, fn Func[A, R]) *Callable[A, R] {
	return &Callable[A, R]{meta: Meta{Name: name, Doc: doc}, fn: fn}
}

// Thunk wraps a zero-argument function as a Callable.
func Thunk[R any](name, doc string, fn func(ctx context.Context) (R, error)) *Callable[struct{}, R] {
	return New(name, doc, func(ctx context.Context, _ struct{}) (R, error) {
		return fn(ctx)
	})
}

// Run invokes a zero-argument Callable.
func Run[R any](ctx context.Context, c *Callable[struct{}, R]) (R, error) {
	return c.Call(ctx, struct{}{})
}

// Meta returns the callable's identity.
func (c *Callable[A, R]) Meta() Meta { return c.meta }

// Name returns the callable's name.
func (c *Callable[A, R]) Name() string { return c.meta.Name }

// Doc returns the callable's documentation string.
func (c *Callable[A, R]) Doc() string { return c.meta.Doc }

// Call invokes the callable.
func (c *Callable[A, R]) Call(ctx context.Context, arg A) (R, error) {
	return c.fn(ctx, arg)
}

// wrap builds a Callable that keeps c's identity but runs fn.
func (c *Callable[A, R]) wrap(fn Func[A, R]) *Callable[A, R] {
	return &Callable[A, R]{meta: c.meta, fn: fn}
}

// Decorator transforms a Callable into another Callable with the same
// call contract.
type Decorator[A, R any] func(*Callable[A, R]) *Callable[A, R]

// Apply decorates c with each decorator. The first decorator listed ends up
// outermost, matching the top-to-bottom reading order of stacked decorators.
func Apply[A, R any](c *Callable[A, R], decorators ...Decorator[A, R]) *Callable[A, R] {
	for i := len(decorators) - 1; i >= 0; i-- {
		c = decorators[i](c)
	}
	return c
}
