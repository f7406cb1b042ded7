package fixedhash

import (
	"errors"
	"iter"
)

// Set is a fixed-capacity hash set built over Map with empty values. It
// shares the map's collision policies, hashing, and concurrency contract.
type Set[K comparable] struct {
	m *Map[K, struct{}]
}

// NewSet builds a set with the given fixed capacity. A non-positive
// capacity panics; an unknown probing policy returns ErrInvalidProbing.
func NewSet[K comparable](capacity int, opts ...Option[K]) (*Set[K], error) {
	m, err := New[K, struct{}](capacity, opts...)
	if err != nil {
		return nil, err
	}

	return &Set[K]{m: m}, nil
}

// Add inserts key, reporting whether it was newly added. Adding a present
// key is a no-op, not an error; ErrCapacityExhausted when the set is full.
func (s *Set[K]) Add(key K) (bool, error) {
	err := s.m.Insert(key, struct{}{})
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Remove deletes key, reporting whether it was present.
func (s *Set[K]) Remove(key K) bool {
	return s.m.Erase(key) == nil
}

// Contains reports whether key is present.
func (s *Set[K]) Contains(key K) bool {
	return s.m.Contains(key)
}

// Merge adds every member of other that this set does not already hold.
// other is never modified. A full destination stops the merge with
// ErrCapacityExhausted.
func (s *Set[K]) Merge(other *Set[K]) error {
	if other == nil {
		return nil
	}

	return s.m.Merge(other.m)
}

// Clear removes every member. Capacity is retained.
func (s *Set[K]) Clear() {
	s.m.Clear()
}

// Len returns the number of members.
func (s *Set[K]) Len() int { return s.m.Len() }

// Cap returns the fixed capacity chosen at construction.
func (s *Set[K]) Cap() int { return s.m.Cap() }

// Empty reports whether the set holds no members.
func (s *Set[K]) Empty() bool { return s.m.Empty() }

// Probing returns the collision policy backing the set.
func (s *Set[K]) Probing() Probing { return s.m.Probing() }

// All returns an iterator over the members in unspecified order, with the
// same mid-walk mutation tolerance as Map.All.
func (s *Set[K]) All() iter.Seq[K] {
	return s.m.Keys()
}
