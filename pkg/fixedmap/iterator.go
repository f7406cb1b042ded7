package fixedmap

import (
	"iter"
	"math"
)

// Iterator boundary markers. endNode doubles as the tree's "no node"
// index, so walking past the maximum lands on End naturally; the reverse
// end needs its own marker.
const (
	endNode  uint32 = 0
	rendNode uint32 = math.MaxUint32
)

// Iterator is a bounded bidirectional cursor over the map in key order.
// Next clamps at End and Prev at the reverse end, and dereferencing either
// boundary returns ErrInvalidIteratorDereference instead of a value.
//
// An iterator addresses a tree node, not a key: it stays valid across
// unrelated inserts and erases, and is invalidated only by the erase of
// the entry it points at or by Clear.
type Iterator[K, V any] struct {
	m    *Map[K, V]
	node uint32
}

// Begin returns an iterator at the smallest key, or End when the map is
// empty.
func (m *Map[K, V]) Begin() Iterator[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Iterator[K, V]{m: m, node: m.tree.Min()}
}

// End returns the past-the-end iterator.
func (m *Map[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{m: m, node: endNode}
}

// FindIter returns an iterator at key, or End when the key is absent.
func (m *Map[K, V]) FindIter(key K) Iterator[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Iterator[K, V]{m: m, node: m.tree.FindNode(key)}
}

// Next returns the iterator advanced by one key. Advancing from the last
// key yields End; advancing End stays at End. Advancing from the reverse
// end re-enters at the smallest key.
func (it Iterator[K, V]) Next() Iterator[K, V] {
	it.m.mu.Lock()
	defer it.m.mu.Unlock()

	switch it.node {
	case endNode:
		// Clamped.
	case rendNode:
		it.node = it.m.tree.Min()
	default:
		it.node = it.m.tree.Next(it.node)
	}

	return it
}

// Prev returns the iterator moved back by one key. Moving back from the
// first key yields the reverse end; moving back from End re-enters at the
// largest key.
func (it Iterator[K, V]) Prev() Iterator[K, V] {
	it.m.mu.Lock()
	defer it.m.mu.Unlock()

	switch it.node {
	case rendNode:
		// Clamped.
	case endNode:
		it.node = it.maxOrREnd()
	default:
		prev := it.m.tree.Prev(it.node)
		if prev == 0 {
			prev = rendNode
		}

		it.node = prev
	}

	return it
}

func (it Iterator[K, V]) maxOrREnd() uint32 {
	if n := it.m.tree.Max(); n != 0 {
		return n
	}

	return rendNode
}

// Entry returns the key and value under the iterator.
// ErrInvalidIteratorDereference when the iterator sits on a boundary.
func (it Iterator[K, V]) Entry() (K, V, error) {
	it.m.mu.Lock()
	defer it.m.mu.Unlock()

	if it.node == endNode || it.node == rendNode {
		var (
			zeroK K
			zeroV V
		)

		return zeroK, zeroV, ErrInvalidIteratorDereference
	}

	return it.m.tree.KeyAt(it.node), it.m.tree.ValueAt(it.node), nil
}

// Valid reports whether the iterator addresses an entry rather than a
// boundary.
func (it Iterator[K, V]) Valid() bool {
	return it.node != endNode && it.node != rendNode
}

// All returns an ascending key-order iterator over the entries. The lock
// is released around each yield, and the walk resumes at the successor of
// the last seen key, so the sequence stays consistent under concurrent
// mutation without holding the map for its whole length.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.mu.Lock()

		n := m.tree.Min()
		for n != 0 {
			key, value := m.tree.KeyAt(n), m.tree.ValueAt(n)
			m.mu.Unlock()

			if !yield(key, value) {
				return
			}

			m.mu.Lock()
			n = m.tree.UpperBound(key)
		}

		m.mu.Unlock()
	}
}

// Keys returns an ascending iterator over the keys.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over the values in ascending key order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}
