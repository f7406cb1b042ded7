// Package fixedvec provides a fixed-capacity contiguous vector. The
// backing array is allocated once at construction; overflowing operations
// fail with ErrCapacityExhausted instead of growing the storage.
package fixedvec

import (
	"errors"
	"iter"
)

// Sentinel errors reported by vector operations.
var (
	ErrCapacityExhausted = errors.New("capacity exhausted")
	ErrOutOfRange        = errors.New("index out of range")
)

// Vector is a fixed-capacity contiguous sequence. Not safe for concurrent
// use.
type Vector[T any] struct {
	items []T
}

// New builds a vector with the given fixed capacity. Panics when capacity
// is not positive.
func New[T any](capacity int) *Vector[T] {
	if capacity < 1 {
		panic("fixedvec: capacity must be positive")
	}

	return &Vector[T]{items: make([]T, 0, capacity)}
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.items) }

// Cap returns the fixed capacity chosen at construction.
func (v *Vector[T]) Cap() int { return cap(v.items) }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return len(v.items) == 0 }

// Full reports whether the vector is at capacity.
func (v *Vector[T]) Full() bool { return len(v.items) == cap(v.items) }

// PushBack appends value. ErrCapacityExhausted when full.
func (v *Vector[T]) PushBack(value T) error {
	if v.Full() {
		return ErrCapacityExhausted
	}

	v.items = append(v.items, value)

	return nil
}

// PopBack removes and returns the last element. ErrOutOfRange when empty.
func (v *Vector[T]) PopBack() (T, error) {
	if len(v.items) == 0 {
		var zero T

		return zero, ErrOutOfRange
	}

	last := len(v.items) - 1
	value := v.items[last]

	// Zero the vacated slot so it does not pin heap objects.
	var zero T

	v.items[last] = zero
	v.items = v.items[:last]

	return value, nil
}

// At returns the element at index i.
func (v *Vector[T]) At(i int) (T, error) {
	if i < 0 || i >= len(v.items) {
		var zero T

		return zero, ErrOutOfRange
	}

	return v.items[i], nil
}

// Set overwrites the element at index i.
func (v *Vector[T]) Set(i int, value T) error {
	if i < 0 || i >= len(v.items) {
		return ErrOutOfRange
	}

	v.items[i] = value

	return nil
}

// Front returns the first element.
func (v *Vector[T]) Front() (T, error) {
	return v.At(0)
}

// Back returns the last element.
func (v *Vector[T]) Back() (T, error) {
	return v.At(len(v.items) - 1)
}

// Insert places value at index i, shifting the tail right. i may equal
// Len, which appends.
func (v *Vector[T]) Insert(i int, value T) error {
	if i < 0 || i > len(v.items) {
		return ErrOutOfRange
	}

	if v.Full() {
		return ErrCapacityExhausted
	}

	var zero T

	v.items = append(v.items, zero)
	copy(v.items[i+1:], v.items[i:])
	v.items[i] = value

	return nil
}

// EraseAt removes the element at index i, shifting the tail left.
func (v *Vector[T]) EraseAt(i int) error {
	if i < 0 || i >= len(v.items) {
		return ErrOutOfRange
	}

	last := len(v.items) - 1
	copy(v.items[i:], v.items[i+1:])

	var zero T

	v.items[last] = zero
	v.items = v.items[:last]

	return nil
}

// Swap exchanges the elements at i and j.
func (v *Vector[T]) Swap(i, j int) error {
	if i < 0 || i >= len(v.items) || j < 0 || j >= len(v.items) {
		return ErrOutOfRange
	}

	v.items[i], v.items[j] = v.items[j], v.items[i]

	return nil
}

// Clear removes every element. Capacity is retained.
func (v *Vector[T]) Clear() {
	clear(v.items[:cap(v.items)])
	v.items = v.items[:0]
}

// Data returns the live backing slice. The view aliases the vector's
// storage: writes through it are visible to the vector, and it is
// invalidated by any operation that changes Len.
func (v *Vector[T]) Data() []T {
	return v.items
}

// All returns an index-ordered iterator over the elements.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range v.items {
			if !yield(i, item) {
				return
			}
		}
	}
}
