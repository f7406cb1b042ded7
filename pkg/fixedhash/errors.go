package fixedhash

import "errors"

// Sentinel errors surfaced by hash map and set operations.
var (
	// ErrCapacityExhausted is returned when an insert needs a slot and
	// every slot is taken.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	// ErrDuplicateKey is returned by strict inserts when the key is
	// already present.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrKeyNotFound is returned by operations that require the key to
	// exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidProbing is returned when a collision policy is not one of
	// the declared Probing values.
	ErrInvalidProbing = errors.New("invalid probing policy")
)
