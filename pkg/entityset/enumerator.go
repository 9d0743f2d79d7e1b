package entityset

import (
	"context"
	"fmt"
	"iter"
)

// Enumerator is a cursor over query results. MoveNext is the point where a
// latency-bearing store would block; here it completes immediately, but it
// still honors cancellation so callers stay agnostic of the backing source.
type Enumerator[T any] struct {
	next    func() (any, bool)
	stop    func()
	current T
	closed  bool
}

func newEnumerator[T any](seq iter.Seq[any]) *Enumerator[T] {
	next, stop := iter.Pull(seq)
	return &Enumerator[T]{next: next, stop: stop}
}

// Enumerate wraps a synchronous sequence in an Enumerator.
func Enumerate[T any](seq iter.Seq[T]) *Enumerator[T] {
	if seq == nil {
		panic(invalidArgument("enumerate: nil sequence"))
	}
	return newEnumerator[T](func(yield func(any) bool) {
		for v := range seq {
			if !yield(v) {
				return
			}
		}
	})
}

// MoveNext advances to the next element and reports whether one exists.
// A done context fails the call with ErrOperationCancelled and leaves the
// cursor where it was.
func (e *Enumerator[T]) MoveNext(ctx context.Context) (bool, error) {
	if e.closed {
		return false, fmt.Errorf("%w: enumerator closed", ErrInvalidState)
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrOperationCancelled, err)
	}
	v, ok := e.next()
	if !ok {
		var zero T
		e.current = zero
		return false, nil
	}
	e.current = as[T](v)
	return true, nil
}

// Current returns the element at the cursor, or the zero value before the
// first successful MoveNext and after Close.
func (e *Enumerator[T]) Current() T {
	return e.current
}

// Close releases the underlying cursor. Calling it again is a no-op.
func (e *Enumerator[T]) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.stop()
	var zero T
	e.current = zero
	return nil
}
