// Package pkg is a package that provides utilities for modulize.
package pkg

// OrderedSet is a generic set that remembers insertion order. The rewriter
// relies on it to keep generated import lists deterministic: names appear
// in order of first use, duplicates are dropped.
type OrderedSet[T comparable] interface {
	Add(item T) bool
	Has(item T) bool
	Len() int
	Items() []T
}

type orderedSetImpl[T comparable] struct {
	seen  map[T]struct{}
	order []T
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet[T comparable]() OrderedSet[T] {
	return &orderedSetImpl[T]{seen: make(map[T]struct{})}
}

// Add implements OrderedSet. It reports whether the item was newly added.
func (s *orderedSetImpl[T]) Add(item T) bool {
	if _, ok := s.seen[item]; ok {
		return false
	}

	s.seen[item] = struct{}{}
	s.order = append(s.order, item)

	return true
}

// Has implements OrderedSet.
func (s *orderedSetImpl[T]) Has(item T) bool {
	_, ok := s.seen[item]

	return ok
}

// Len implements OrderedSet.
func (s *orderedSetImpl[T]) Len() int {
	return len(s.order)
}

// Items implements OrderedSet. The returned slice is a copy.
func (s *orderedSetImpl[T]) Items() []T {
	items := make([]T, len(s.order))
	copy(items, s.order)

	return items
}
