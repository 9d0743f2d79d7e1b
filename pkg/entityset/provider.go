package entityset

import (
	"context"
	"iter"
	"slices"
)

// provider interprets query nodes. It holds no state between calls, so a
// node may be executed any number of times and every execution reads the
// source afresh.
type provider struct{}

var defaultProvider = &provider{}

// compose links op under parent. The parent is shared, never copied or
// modified, which keeps previously built queries valid.
func (p *provider) compose(parent *node, op node) *node {
	op.parent = parent
	return &op
}

// enumerate builds the lazy pipeline for n. Operations run in the order
// they were chained; ordering buffers its upstream, everything else streams.
func (p *provider) enumerate(n *node) iter.Seq[any] {
	if n == nil {
		return func(func(any) bool) {}
	}
	switch n.op {
	case opRoot:
		if n.src == nil {
			return func(func(any) bool) {}
		}
		return n.src.elements()
	case opFilter:
		upstream := p.enumerate(n.parent)
		return func(yield func(any) bool) {
			for v := range upstream {
				if n.filter(v) && !yield(v) {
					return
				}
			}
		}
	case opProject:
		upstream := p.enumerate(n.parent)
		return func(yield func(any) bool) {
			for v := range upstream {
				if !yield(n.project(v)) {
					return
				}
			}
		}
	case opOrder:
		upstream := p.enumerate(n.parent)
		return func(yield func(any) bool) {
			buf := slices.Collect(upstream)
			slices.SortStableFunc(buf, n.compare)
			for _, v := range buf {
				if !yield(v) {
					return
				}
			}
		}
	case opSkip:
		upstream := p.enumerate(n.parent)
		return func(yield func(any) bool) {
			skipped := 0
			for v := range upstream {
				if skipped < n.count {
					skipped++
					continue
				}
				if !yield(v) {
					return
				}
			}
		}
	case opTake:
		upstream := p.enumerate(n.parent)
		return func(yield func(any) bool) {
			if n.count == 0 {
				return
			}
			taken := 0
			for v := range upstream {
				if !yield(v) {
					return
				}
				taken++
				if taken == n.count {
					return
				}
			}
		}
	default:
		panic(invalidArgument("unknown query operation %d", n.op))
	}
}

// execute materializes n through an enumerator so that cancellation is
// observed between elements.
func (p *provider) execute(ctx context.Context, n *node) ([]any, error) {
	e := newEnumerator[any](p.enumerate(n))
	defer func() { _ = e.Close() }()
	out := make([]any, 0)
	for {
		ok, err := e.MoveNext(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, e.Current())
	}
}
