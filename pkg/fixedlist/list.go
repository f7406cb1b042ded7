// Package fixedlist provides a fixed-capacity doubly linked list whose
// nodes live in a pre-allocated pool. Handles address pool slots directly,
// so insertion and removal at a known position are O(1) and the list never
// allocates after construction.
package fixedlist

import (
	"errors"
	"iter"
)

// Sentinel errors reported by list operations.
var (
	ErrCapacityExhausted = errors.New("capacity exhausted")
	ErrEmptyList         = errors.New("list is empty")
	ErrInvalidHandle     = errors.New("invalid handle")
)

// Handle addresses a list element. A handle stays valid until its element
// is removed or the list is cleared; the zero Handle is never valid.
type Handle uint32

// lnode is a pool slot. Free slots are threaded into a LIFO list through
// their next links; slot 0 is the shared nil sentinel.
type lnode[T any] struct {
	value T
	prev  uint32
	next  uint32
	used  bool
}

// List is a fixed-capacity doubly linked list. Not safe for concurrent
// use.
type List[T any] struct {
	nodes []lnode[T]
	free  uint32
	head  uint32
	tail  uint32
	size  int
}

// New builds a list with the given fixed capacity. Panics when capacity is
// not positive.
func New[T any](capacity int) *List[T] {
	if capacity < 1 {
		panic("fixedlist: capacity must be positive")
	}

	l := &List[T]{nodes: make([]lnode[T], capacity+1)}
	l.thread()

	return l
}

func (l *List[T]) thread() {
	last := uint32(len(l.nodes) - 1)
	for i := uint32(1); i < last; i++ {
		l.nodes[i].next = i + 1
	}

	l.nodes[last].next = 0
	l.free = 1
	l.head = 0
	l.tail = 0
	l.size = 0
}

func (l *List[T]) acquire(value T) (uint32, error) {
	if l.free == 0 {
		return 0, ErrCapacityExhausted
	}

	n := l.free
	l.free = l.nodes[n].next
	l.nodes[n] = lnode[T]{value: value, used: true}
	l.size++

	return n, nil
}

func (l *List[T]) release(n uint32) {
	l.nodes[n] = lnode[T]{next: l.free}
	l.free = n
	l.size--
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.size }

// Cap returns the fixed capacity chosen at construction.
func (l *List[T]) Cap() int { return len(l.nodes) - 1 }

// Empty reports whether the list holds no elements.
func (l *List[T]) Empty() bool { return l.size == 0 }

// Full reports whether the list is at capacity.
func (l *List[T]) Full() bool { return l.size == l.Cap() }

// Clear removes every element. Capacity is retained and all handles are
// invalidated.
func (l *List[T]) Clear() {
	clear(l.nodes)
	l.thread()
}

// PushFront prepends value and returns its handle.
func (l *List[T]) PushFront(value T) (Handle, error) {
	n, err := l.acquire(value)
	if err != nil {
		return 0, err
	}

	l.nodes[n].next = l.head

	if l.head != 0 {
		l.nodes[l.head].prev = n
	} else {
		l.tail = n
	}

	l.head = n

	return Handle(n), nil
}

// PushBack appends value and returns its handle.
func (l *List[T]) PushBack(value T) (Handle, error) {
	n, err := l.acquire(value)
	if err != nil {
		return 0, err
	}

	l.nodes[n].prev = l.tail

	if l.tail != 0 {
		l.nodes[l.tail].next = n
	} else {
		l.head = n
	}

	l.tail = n

	return Handle(n), nil
}

// PopFront removes and returns the first element.
func (l *List[T]) PopFront() (T, error) {
	if l.head == 0 {
		var zero T

		return zero, ErrEmptyList
	}

	return l.Remove(Handle(l.head))
}

// PopBack removes and returns the last element.
func (l *List[T]) PopBack() (T, error) {
	if l.tail == 0 {
		var zero T

		return zero, ErrEmptyList
	}

	return l.Remove(Handle(l.tail))
}

// Front returns the first element without removing it.
func (l *List[T]) Front() (T, error) {
	if l.head == 0 {
		var zero T

		return zero, ErrEmptyList
	}

	return l.nodes[l.head].value, nil
}

// Back returns the last element without removing it.
func (l *List[T]) Back() (T, error) {
	if l.tail == 0 {
		var zero T

		return zero, ErrEmptyList
	}

	return l.nodes[l.tail].value, nil
}

// Value returns the element under h.
func (l *List[T]) Value(h Handle) (T, error) {
	if !l.valid(h) {
		var zero T

		return zero, ErrInvalidHandle
	}

	return l.nodes[h].value, nil
}

// InsertBefore places value immediately before the element under h.
func (l *List[T]) InsertBefore(h Handle, value T) (Handle, error) {
	if !l.valid(h) {
		return 0, ErrInvalidHandle
	}

	if Handle(l.head) == h {
		return l.PushFront(value)
	}

	n, err := l.acquire(value)
	if err != nil {
		return 0, err
	}

	at := uint32(h)
	prev := l.nodes[at].prev

	l.nodes[n].prev = prev
	l.nodes[n].next = at
	l.nodes[prev].next = n
	l.nodes[at].prev = n

	return Handle(n), nil
}

// InsertAfter places value immediately after the element under h.
func (l *List[T]) InsertAfter(h Handle, value T) (Handle, error) {
	if !l.valid(h) {
		return 0, ErrInvalidHandle
	}

	if Handle(l.tail) == h {
		return l.PushBack(value)
	}

	n, err := l.acquire(value)
	if err != nil {
		return 0, err
	}

	at := uint32(h)
	next := l.nodes[at].next

	l.nodes[n].prev = at
	l.nodes[n].next = next
	l.nodes[next].prev = n
	l.nodes[at].next = n

	return Handle(n), nil
}

// Remove unlinks the element under h and returns its value. The handle is
// invalidated.
func (l *List[T]) Remove(h Handle) (T, error) {
	if !l.valid(h) {
		var zero T

		return zero, ErrInvalidHandle
	}

	n := uint32(h)
	value := l.nodes[n].value

	l.unlink(n)
	l.release(n)

	return value, nil
}

func (l *List[T]) unlink(n uint32) {
	prev, next := l.nodes[n].prev, l.nodes[n].next

	if prev != 0 {
		l.nodes[prev].next = next
	} else {
		l.head = next
	}

	if next != 0 {
		l.nodes[next].prev = prev
	} else {
		l.tail = prev
	}
}

// RemoveFunc removes every element matching pred and returns how many
// were removed.
func (l *List[T]) RemoveFunc(pred func(T) bool) int {
	removed := 0

	n := l.head
	for n != 0 {
		next := l.nodes[n].next

		if pred(l.nodes[n].value) {
			l.unlink(n)
			l.release(n)

			removed++
		}

		n = next
	}

	return removed
}

// MergeFunc merges the elements of other into l so that both runs stay
// ordered under less, assuming each input was ordered. other is drained.
// When l lacks the room for every element, ErrCapacityExhausted is
// returned and neither list changes.
func (l *List[T]) MergeFunc(other *List[T], less func(a, b T) bool) error {
	if other == nil || other == l || other.size == 0 {
		return nil
	}

	if l.size+other.size > l.Cap() {
		return ErrCapacityExhausted
	}

	at := l.head

	for o := other.head; o != 0; o = other.nodes[o].next {
		value := other.nodes[o].value

		for at != 0 && !less(value, l.nodes[at].value) {
			at = l.nodes[at].next
		}

		if at == 0 {
			_, err := l.PushBack(value)
			doAssert(err == nil)
		} else {
			_, err := l.InsertBefore(Handle(at), value)
			doAssert(err == nil)
		}
	}

	other.Clear()

	return nil
}

// SpliceBack appends every element of other in order and drains other.
// When l lacks the room, ErrCapacityExhausted is returned and neither
// list changes.
func (l *List[T]) SpliceBack(other *List[T]) error {
	if other == nil || other == l || other.size == 0 {
		return nil
	}

	if l.size+other.size > l.Cap() {
		return ErrCapacityExhausted
	}

	for o := other.head; o != 0; o = other.nodes[o].next {
		_, err := l.PushBack(other.nodes[o].value)
		doAssert(err == nil)
	}

	other.Clear()

	return nil
}

// All returns a front-to-back iterator over the elements.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != 0; n = l.nodes[n].next {
			if !yield(l.nodes[n].value) {
				return
			}
		}
	}
}

// Backward returns a back-to-front iterator over the elements.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.tail; n != 0; n = l.nodes[n].prev {
			if !yield(l.nodes[n].value) {
				return
			}
		}
	}
}

func (l *List[T]) valid(h Handle) bool {
	n := uint32(h)

	return n != 0 && n < uint32(len(l.nodes)) && l.nodes[n].used
}

func doAssert(b bool) {
	if !b {
		panic("fixedlist: internal consistency error")
	}
}
