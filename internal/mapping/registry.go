// Package mapping converts between entities and DTOs through a registry of
// pure functions keyed by (source type, destination type).
package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNoMapping is returned when no function is registered for a type pair.
var ErrNoMapping = errors.New("mapping: no mapping registered")

type pair struct {
	src reflect.Type
	dst reflect.Type
}

func (p pair) String() string { return fmt.Sprintf("%s -> %s", p.src, p.dst) }

func pairOf[S, D any]() pair {
	return pair{src: reflect.TypeFor[S](), dst: reflect.TypeFor[D]()}
}

// Registry holds conversion and apply functions. It is safe for concurrent
// use once populated.
type Registry struct {
	mu      sync.RWMutex
	maps    map[pair]any
	applies map[pair]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{maps: make(map[pair]any), applies: make(map[pair]any)}
}

// Register installs fn as the S -> D conversion, replacing any previous one.
func Register[S, D any](r *Registry, fn func(S) D) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps[pairOf[S, D]()] = fn
}

// RegisterApply installs fn as the function that copies the fields of S onto
// an existing D.
func RegisterApply[S, D any](r *Registry, fn func(S, D)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applies[pairOf[S, D]()] = fn
}

// Map converts src to D.
func Map[S, D any](r *Registry, src S) (D, error) {
	fn, err := lookup[func(S) D](r, conversions, pairOf[S, D]())
	if err != nil {
		var zero D
		return zero, err
	}
	return fn(src), nil
}

// MapAll converts every element of src.
func MapAll[S, D any](r *Registry, src []S) ([]D, error) {
	fn, err := lookup[func(S) D](r, conversions, pairOf[S, D]())
	if err != nil {
		return nil, err
	}
	out := make([]D, 0, len(src))
	for _, s := range src {
		out = append(out, fn(s))
	}
	return out, nil
}

// Apply overwrites the fields of dst that src carries.
func Apply[S, D any](r *Registry, src S, dst D) error {
	fn, err := lookup[func(S, D)](r, appliers, pairOf[S, D]())
	if err != nil {
		return err
	}
	fn(src, dst)
	return nil
}

func conversions(r *Registry) map[pair]any { return r.maps }

func appliers(r *Registry) map[pair]any { return r.applies }

// lookup reads the table only after the nil check so a nil registry reports
// ErrNoMapping.
func lookup[F any](r *Registry, table func(*Registry) map[pair]any, key pair) (F, error) {
	var zero F
	if r == nil {
		return zero, fmt.Errorf("%w: %s (nil registry)", ErrNoMapping, key)
	}
	r.mu.RLock()
	raw, ok := table(r)[key]
	r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoMapping, key)
	}
	return raw.(F), nil
}
