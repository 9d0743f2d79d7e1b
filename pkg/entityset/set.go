package entityset

import (
	"fmt"
	"iter"
	"slices"
)

// Identifiable is implemented by every entity stored in a Set.
type Identifiable interface {
	Identity() int
}

// Set is an ordered in-memory collection of entities keyed by identity. It
// is both a synchronous collection (All, Len) and the root of deferred
// queries (Query). Set does no locking; callers serialize access.
type Set[T Identifiable] struct {
	items    []T
	ids      map[int]struct{}
	seq      int
	provider *provider
}

// New returns an empty set.
func New[T Identifiable]() *Set[T] {
	return &Set[T]{ids: make(map[int]struct{}), provider: defaultProvider}
}

// Add appends entity and returns it. An identity that is already present is
// a caller bug and is reported as ErrDuplicateIdentity.
func (s *Set[T]) Add(entity T) (T, error) {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	id := entity.Identity()
	if _, exists := s.ids[id]; exists {
		var zero T
		return zero, fmt.Errorf("%w: %d", ErrDuplicateIdentity, id)
	}
	s.items = append(s.items, entity)
	s.ids[id] = struct{}{}
	if id > s.seq {
		s.seq = id
	}
	return entity, nil
}

// Remove deletes the entity with the same identity. Removing an entity that
// is not in the set does nothing.
func (s *Set[T]) Remove(entity T) T {
	id := entity.Identity()
	if _, exists := s.ids[id]; !exists {
		return entity
	}
	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	delete(s.ids, id)
	return entity
}

// Attach is Add; there is no tracked/untracked distinction in memory.
func (s *Set[T]) Attach(entity T) (T, error) { return s.Add(entity) }

// Detach is Remove.
func (s *Set[T]) Detach(entity T) T { return s.Remove(entity) }

// Len returns the number of stored entities, soft-deleted ones included.
func (s *Set[T]) Len() int { return len(s.items) }

// Contains reports whether an entity with id is stored.
func (s *Set[T]) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// NextID reserves the next identity. Identities are never handed out twice,
// even after the entity holding one has been removed.
func (s *Set[T]) NextID() int {
	s.seq++
	return s.seq
}

// Sequence returns the highest identity reserved or stored so far.
func (s *Set[T]) Sequence() int { return s.seq }

// Restore replaces the contents with items and raises the identity sequence
// to at least seq. It fails without modifying the set on duplicate ids.
func (s *Set[T]) Restore(items []T, seq int) error {
	ids := make(map[int]struct{}, len(items))
	for _, item := range items {
		id := item.Identity()
		if _, exists := ids[id]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateIdentity, id)
		}
		ids[id] = struct{}{}
		if id > seq {
			seq = id
		}
	}
	s.items = slices.Clone(items)
	s.ids = ids
	s.seq = seq
	return nil
}

// All iterates the live collection in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(s.items); i++ {
			if !yield(s.items[i]) {
				return
			}
		}
	}
}

// Enumerator returns a cursor over the live collection.
func (s *Set[T]) Enumerator() *Enumerator[T] {
	return Enumerate(s.All())
}

// Query returns a deferred query rooted at the live collection. Changes made
// to the set after the query is built are visible when it executes.
func (s *Set[T]) Query() Query[T] {
	p := s.provider
	if p == nil {
		p = defaultProvider
	}
	return newQuery[T](p, &node{op: opRoot, src: s})
}

func (s *Set[T]) elements() iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range s.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (s *Set[T]) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(item T) bool { return item.Identity() == id })
}
