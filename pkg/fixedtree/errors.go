package fixedtree

import "errors"

// Sentinel errors reported by the tree strategies and the containers built
// on top of them. Callers match with errors.Is.
var (
	// ErrCapacityExhausted is returned when an insert finds no free slot.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	// ErrDuplicateKey is returned when an insert collides with an existing key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrKeyNotFound is returned when an erase or extract misses.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidIteratorDereference is returned when a boundary iterator is read.
	ErrInvalidIteratorDereference = errors.New("invalid iterator dereference")

	// ErrInvalidStrategy is returned by the factory for an unknown strategy tag.
	ErrInvalidStrategy = errors.New("invalid tree strategy")
)
