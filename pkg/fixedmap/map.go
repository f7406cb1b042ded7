// Package fixedmap provides a fixed-capacity ordered map that is safe for
// concurrent use. Entries live in a pre-allocated balanced-tree arena, so
// the map never allocates after construction; when the capacity is
// exhausted, inserts fail with ErrCapacityExhausted instead of growing.
//
// Every public operation acquires the map's single mutex at the boundary
// and performs all internal work on the unsynchronized tree layer, so no
// public operation ever re-enters another through the lock.
package fixedmap

import (
	"cmp"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/snir-david/ESTL/pkg/fixedtree"
)

// Sentinel errors surfaced by map operations, shared with the tree layer
// so errors.Is matches across both packages.
var (
	ErrCapacityExhausted          = fixedtree.ErrCapacityExhausted
	ErrDuplicateKey               = fixedtree.ErrDuplicateKey
	ErrKeyNotFound                = fixedtree.ErrKeyNotFound
	ErrInvalidIteratorDereference = fixedtree.ErrInvalidIteratorDereference
)

// mergeMu serializes Merge calls package-wide. Merge is the only operation
// that holds two map locks at once; funneling it through one mutex makes a
// crossing a.Merge(b) / b.Merge(a) unable to deadlock.
var mergeMu sync.Mutex

// Map is a fixed-capacity ordered map backed by a balanced search tree.
// The zero value is not usable; construct with New or NewFunc.
type Map[K, V any] struct {
	mu   sync.Mutex
	tree fixedtree.Tree[K, V]

	// Counters are atomics so Stats snapshots stay cheap and hot paths
	// never take a second lock.
	inserts    atomic.Int64
	updates    atomic.Int64
	erases     atomic.Int64
	hits       atomic.Int64
	misses     atomic.Int64
	rejections atomic.Int64
}

// New builds a map over an ordered key type with the given fixed capacity.
// The default balancing strategy is red-black; override with WithStrategy.
// A non-positive capacity panics; an unknown strategy returns
// fixedtree.ErrInvalidStrategy.
func New[K cmp.Ordered, V any](capacity int, opts ...Option) (*Map[K, V], error) {
	return NewFunc[K, V](capacity, cmp.Compare[K], opts...)
}

// NewFunc builds a map with a caller-supplied comparator defining a total
// order over the keys.
func NewFunc[K, V any](capacity int, compare func(a, b K) int, opts ...Option) (*Map[K, V], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	tree, err := fixedtree.NewFunc[K, V](options.strategy, capacity, compare)
	if err != nil {
		return nil, err
	}

	return &Map[K, V]{tree: tree}, nil
}

// Insert adds key with value. ErrDuplicateKey when the key already exists,
// ErrCapacityExhausted when the map is full.
func (m *Map[K, V]) Insert(key K, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertTracked(key, value)
}

// insertTracked runs a tree insert under an already-held lock and keeps
// the counters honest.
func (m *Map[K, V]) insertTracked(key K, value V) error {
	err := m.tree.Insert(key, value)
	if err != nil {
		if errors.Is(err, ErrCapacityExhausted) {
			m.rejections.Add(1)
		}

		return err
	}

	m.inserts.Add(1)

	return nil
}

// InsertOrAssign inserts key when absent and overwrites its value when
// present. The returned flag reports whether a new entry was created.
func (m *Map[K, V]) InsertOrAssign(key K, value V) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := m.tree.FindNode(key); n != 0 {
		m.tree.SetValueAt(n, value)
		m.updates.Add(1)

		return false, nil
	}

	if err := m.insertTracked(key, value); err != nil {
		return false, err
	}

	return true, nil
}

// Erase removes key. ErrKeyNotFound when absent.
func (m *Map[K, V]) Erase(key K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.tree.Erase(key); err != nil {
		return err
	}

	m.erases.Add(1)

	return nil
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.tree.FindNode(key)
	if n == 0 {
		m.misses.Add(1)

		var zero V

		return zero, false
	}

	m.hits.Add(1)

	return m.tree.ValueAt(n), true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)

	return ok
}

// At returns the value stored under key, inserting the zero value first
// when the key is absent. This is the indexed-access form: reading a
// missing key materializes it. ErrCapacityExhausted when the map is full
// and the key would need a new slot.
func (m *Map[K, V]) At(key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := m.tree.FindNode(key); n != 0 {
		m.hits.Add(1)

		return m.tree.ValueAt(n), nil
	}

	m.misses.Add(1)

	var zero V

	if err := m.insertTracked(key, zero); err != nil {
		return zero, err
	}

	return zero, nil
}

// SetAt stores value under key, inserting or overwriting as needed. It is
// the write form of indexed access.
func (m *Map[K, V]) SetAt(key K, value V) error {
	_, err := m.InsertOrAssign(key, value)

	return err
}

// Extract removes key and returns the value it held. Unlike Erase, the
// value survives the removal; unlike Get, a miss is a hard
// ErrKeyNotFound.
func (m *Map[K, V]) Extract(key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.tree.FindNode(key)
	if n == 0 {
		m.misses.Add(1)

		var zero V

		return zero, ErrKeyNotFound
	}

	value := m.tree.ValueAt(n)

	if err := m.tree.Erase(key); err != nil {
		return value, err
	}

	m.hits.Add(1)
	m.erases.Add(1)

	return value, nil
}

// Merge inserts every entry of other that this map does not already hold.
// Keys present on both sides keep the destination value; other is never
// modified. Entries are merged in key order and a full destination stops
// the merge with ErrCapacityExhausted, leaving the entries merged so far
// in place.
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

	for n := other.tree.Min(); n != 0; n = other.tree.Next(n) {
		err := m.insertTracked(other.tree.KeyAt(n), other.tree.ValueAt(n))
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

	m.tree.Clear()
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tree.Len()
}

// Cap returns the fixed capacity chosen at construction.
func (m *Map[K, V]) Cap() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tree.Cap()
}

// Empty reports whether the map holds no entries.
func (m *Map[K, V]) Empty() bool {
	return m.Len() == 0
}

// Strategy returns the balancing strategy backing the map.
func (m *Map[K, V]) Strategy() fixedtree.Strategy {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tree.Strategy()
}

// MinKey returns the smallest key.
func (m *Map[K, V]) MinKey() (K, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.tree.Min()
	if n == 0 {
		var zero K

		return zero, false
	}

	return m.tree.KeyAt(n), true
}

// MaxKey returns the largest key.
func (m *Map[K, V]) MaxKey() (K, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.tree.Max()
	if n == 0 {
		var zero K

		return zero, false
	}

	return m.tree.KeyAt(n), true
}
