// Package entityset provides an in-memory entity collection that can be
// queried through deferred, composable queries and consumed through
// context-aware enumerators. Services written against Query and Enumerator
// run unchanged whether the set is the only copy of the data or a cache in
// front of a persistent store.
package entityset

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
)

type opKind uint8

const (
	opRoot opKind = iota
	opFilter
	opProject
	opOrder
	opSkip
	opTake
)

func (k opKind) String() string {
	switch k {
	case opRoot:
		return "root"
	case opFilter:
		return "filter"
	case opProject:
		return "project"
	case opOrder:
		return "order"
	case opSkip:
		return "skip"
	case opTake:
		return "take"
	default:
		return "unknown"
	}
}

// source is anything a root node can pull elements from at execution time.
type source interface {
	elements() iter.Seq[any]
}

// node is one pending operation. Nodes are never mutated after construction;
// composing appends a new node whose parent is the previous one.
type node struct {
	op      opKind
	parent  *node
	src     source
	filter  func(any) bool
	project func(any) any
	compare func(a, b any) int
	count   int
}

// describe renders the chain root-first, e.g. "root|filter|order|take(10)".
func (n *node) describe() string {
	var ops []string
	for cur := n; cur != nil; cur = cur.parent {
		switch cur.op {
		case opSkip, opTake:
			ops = append(ops, fmt.Sprintf("%s(%d)", cur.op, cur.count))
		default:
			ops = append(ops, cur.op.String())
		}
	}
	slices.Reverse(ops)
	return strings.Join(ops, "|")
}

// Query is a deferred query over elements of type T. Composition methods
// return a new Query and never touch the underlying data; execution happens
// in ToList, First, Any, Count and Enumerator.
type Query[T any] struct {
	provider *provider
	expr     *node
}

func newQuery[T any](p *provider, expr *node) Query[T] {
	if p == nil {
		p = defaultProvider
	}
	return Query[T]{provider: p, expr: expr}
}

// String describes the pending operations without executing them.
func (q Query[T]) String() string {
	if q.expr == nil {
		return "empty"
	}
	return q.expr.describe()
}

// From roots a query on an arbitrary synchronous sequence. The function is
// invoked on every execution so the query always observes current data.
func From[T any](elements func() iter.Seq[T]) Query[T] {
	if elements == nil {
		panic(invalidArgument("from: nil source"))
	}
	return newQuery[T](defaultProvider, &node{op: opRoot, src: seqSource[T](elements)})
}

// as converts an erased element back to T; a nil interface becomes the zero value.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}

type seqSource[T any] func() iter.Seq[T]

func (s seqSource[T]) elements() iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range s() {
			if !yield(v) {
				return
			}
		}
	}
}

// Where filters the query with pred.
func (q Query[T]) Where(pred func(T) bool) Query[T] {
	if pred == nil {
		panic(invalidArgument("where: nil predicate"))
	}
	return compose[T](q, node{op: opFilter, filter: func(v any) bool { return pred(as[T](v)) }})
}

// SortFunc orders the query using a three-way comparison. The sort is stable.
func (q Query[T]) SortFunc(compare func(a, b T) int) Query[T] {
	if compare == nil {
		panic(invalidArgument("sort: nil comparison"))
	}
	return compose[T](q, node{op: opOrder, compare: func(a, b any) int { return compare(as[T](a), as[T](b)) }})
}

// Skip bypasses the first n elements.
func (q Query[T]) Skip(n int) Query[T] {
	if n < 0 {
		panic(invalidArgument("skip: negative count %d", n))
	}
	return compose[T](q, node{op: opSkip, count: n})
}

// Take limits the query to at most n elements.
func (q Query[T]) Take(n int) Query[T] {
	if n < 0 {
		panic(invalidArgument("take: negative count %d", n))
	}
	return compose[T](q, node{op: opTake, count: n})
}

// Select projects every element through fn.
func Select[T, U any](q Query[T], fn func(T) U) Query[U] {
	if fn == nil {
		panic(invalidArgument("select: nil mapping"))
	}
	return compose[U](q, node{op: opProject, project: func(v any) any { return fn(as[T](v)) }})
}

// OrderBy sorts ascending by key.
func OrderBy[T any, K cmp.Ordered](q Query[T], key func(T) K) Query[T] {
	if key == nil {
		panic(invalidArgument("order: nil key"))
	}
	return q.SortFunc(func(a, b T) int { return cmp.Compare(key(a), key(b)) })
}

// OrderByDescending sorts descending by key.
func OrderByDescending[T any, K cmp.Ordered](q Query[T], key func(T) K) Query[T] {
	if key == nil {
		panic(invalidArgument("order: nil key"))
	}
	return q.SortFunc(func(a, b T) int { return cmp.Compare(key(b), key(a)) })
}

func compose[U, T any](q Query[T], op node) Query[U] {
	p := q.provider
	if p == nil {
		p = defaultProvider
	}
	return newQuery[U](p, p.compose(q.expr, op))
}

// Enumerator starts a fresh execution of the query and returns a cursor over
// its results. The caller must Close it.
func (q Query[T]) Enumerator() *Enumerator[T] {
	return newEnumerator[T](q.provider.enumerate(q.expr))
}

// ToList executes the query and collects every result.
func (q Query[T]) ToList(ctx context.Context) ([]T, error) {
	rows, err := q.provider.execute(ctx, q.expr)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, v := range rows {
		out = append(out, as[T](v))
	}
	return out, nil
}

// First returns the first result, reporting false when the query is empty.
func (q Query[T]) First(ctx context.Context) (T, bool, error) {
	var zero T
	e := q.Enumerator()
	defer func() { _ = e.Close() }()
	ok, err := e.MoveNext(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	return e.Current(), true, nil
}

// Any reports whether the query yields at least one element.
func (q Query[T]) Any(ctx context.Context) (bool, error) {
	_, ok, err := q.First(ctx)
	return ok, err
}

// Count executes the query and returns the number of results.
func (q Query[T]) Count(ctx context.Context) (int, error) {
	e := q.Enumerator()
	defer func() { _ = e.Close() }()
	n := 0
	for {
		ok, err := e.MoveNext(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}
