// Package fixedhash provides fixed-capacity hash maps and sets that never
// allocate after construction and are safe for concurrent use. Storage is
// sized once: buckets, slots, and chain nodes all come from arrays built
// at construction time, and a full table rejects inserts with
// ErrCapacityExhausted instead of growing.
//
// Collisions are resolved by one of three policies chosen through
// WithProbing: chained buckets over a shared node pool (the default),
// linear probing, or quadratic probing with triangular strides. Keys are
// hashed with hash/maphash under a per-map random seed unless WithHasher
// supplies a custom function.
//
// Iteration order is unspecified and differs between maps.
package fixedhash

import (
	"errors"
	"fmt"
	"hash/maphash"
	"iter"
	"sync"
)

// mergeMu serializes Merge calls package-wide. Merge is the only operation
// that holds two map locks at once; funneling it through one mutex makes a
// crossing a.Merge(b) / b.Merge(a) unable to deadlock.
var mergeMu sync.Mutex

// Map is a fixed-capacity hash map. The zero value is not usable;
// construct with New.
type Map[K comparable, V any] struct {
	mu      sync.Mutex
	probing Probing
	table   table[K, V]
}

// New builds a map with the given fixed capacity. A non-positive capacity
// panics; an unknown probing policy returns ErrInvalidProbing.
func New[K comparable, V any](capacity int, opts ...Option[K]) (*Map[K, V], error) {
	if capacity < 1 {
		panic("fixedhash: capacity must be positive")
	}

	options := defaultOptions[K]()
	for _, opt := range opts {
		opt(&options)
	}

	hash := options.hasher
	if hash == nil {
		seed := maphash.MakeSeed()
		hash = func(key K) uint64 { return maphash.Comparable(seed, key) }
	}

	var tbl table[K, V]

	switch options.probing {
	case Chaining:
		tbl = newChainTable[K, V](capacity, hash)
	case LinearProbing:
		tbl = newProbeTable[K, V](capacity, hash, false)
	case QuadraticProbing:
		tbl = newProbeTable[K, V](capacity, hash, true)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidProbing, uint8(options.probing))
	}

	return &Map[K, V]{probing: options.probing, table: tbl}, nil
}

// Insert adds key with value. ErrDuplicateKey when the key already exists,
// ErrCapacityExhausted when the map is full.
func (m *Map[K, V]) Insert(key K, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.table.insert(key, value)
}

// InsertOrAssign inserts key when absent and overwrites its value when
// present. The returned flag reports whether a new entry was created.
func (m *Map[K, V]) InsertOrAssign(key K, value V) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.table.update(key, value) {
		return false, nil
	}

	if err := m.table.insert(key, value); err != nil {
		return false, err
	}

	return true, nil
}

// Erase removes key. ErrKeyNotFound when absent.
func (m *Map[K, V]) Erase(key K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.table.remove(key); !ok {
		return ErrKeyNotFound
	}

	return nil
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.table.lookup(key)
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)

	return ok
}

// At returns the value stored under key, inserting the zero value first
// when the key is absent. ErrCapacityExhausted when the map is full and
// the key would need a new slot.
func (m *Map[K, V]) At(key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value, ok := m.table.lookup(key); ok {
		return value, nil
	}

	var zero V

	if err := m.table.insert(key, zero); err != nil {
		return zero, err
	}

	return zero, nil
}

// SetAt stores value under key, inserting or overwriting as needed.
func (m *Map[K, V]) SetAt(key K, value V) error {
	_, err := m.InsertOrAssign(key, value)

	return err
}

// Extract removes key and returns the value it held. A miss is a hard
// ErrKeyNotFound.
func (m *Map[K, V]) Extract(key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.table.remove(key)
	if !ok {
		return value, ErrKeyNotFound
	}

	return value, nil
}

// Merge inserts every entry of other that this map does not already hold.
// Keys present on both sides keep the destination value; other is never
// modified. A full destination stops the merge with ErrCapacityExhausted;
// which of the remaining entries made it in before the stop is
// unspecified, like iteration order.
func (m *Map[K, V]) Merge(other *Map[K, V]) error {
	if other == nil || other == m {
		return nil
	}

	mergeMu.Lock()
	defer mergeMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()

	for pos := 0; pos < other.table.positions(); pos++ {
		key, value, ok := other.table.at(pos)
		if !ok {
			continue
		}

		err := m.table.insert(key, value)
		if err != nil && !errors.Is(err, ErrDuplicateKey) {
			return err
		}
	}

	return nil
}

// Clear removes every entry. Capacity is retained.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.table.clear()
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.table.len()
}

// Cap returns the fixed capacity chosen at construction.
func (m *Map[K, V]) Cap() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.table.cap()
}

// Empty reports whether the map holds no entries.
func (m *Map[K, V]) Empty() bool {
	return m.Len() == 0
}

// Probing returns the collision policy backing the map.
func (m *Map[K, V]) Probing() Probing {
	return m.probing
}

// All returns an iterator over the entries in unspecified order. The lock
// is released while the caller's body runs, so the map may be read and
// written from inside the loop. Entries inserted or removed during the
// walk may or may not be seen.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.mu.Lock()

		pos := 0

		for {
			var (
				key   K
				value V
				ok    bool
			)

			for ; pos < m.table.positions(); pos++ {
				if key, value, ok = m.table.at(pos); ok {
					break
				}
			}

			if !ok {
				break
			}

			m.mu.Unlock()

			if !yield(key, value) {
				return
			}

			m.mu.Lock()
			pos++
		}

		m.mu.Unlock()
	}
}

// Keys returns an iterator over the keys in unspecified order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for key := range m.All() {
			if !yield(key) {
				return
			}
		}
	}
}

// Values returns an iterator over the values in unspecified order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, value := range m.All() {
			if !yield(value) {
				return
			}
		}
	}
}
