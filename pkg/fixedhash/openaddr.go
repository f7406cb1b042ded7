package fixedhash

const (
	slotEmpty uint8 = iota
	slotUsed
	slotDead
)

// probeSlot is one open-addressing cell. Removed entries become slotDead
// tombstones so later probe sequences still cross them.
type probeSlot[K comparable, V any] struct {
	key   K
	value V
	state uint8
}

// probeTable resolves collisions by open addressing. The slot array is
// sized to twice the capacity (rounded up to a power of two), keeping the
// load factor at or below one half so probe sequences stay short. Every
// scan is bounded by the table size, which keeps lookups correct even when
// tombstones have consumed the last empty slot.
type probeTable[K comparable, V any] struct {
	hash      func(K) uint64
	mask      uint64
	slots     []probeSlot[K, V]
	live      int
	capacity  int
	quadratic bool
}

func newProbeTable[K comparable, V any](capacity int, hash func(K) uint64, quadratic bool) *probeTable[K, V] {
	size := tableSize(2 * capacity)

	return &probeTable[K, V]{
		hash:      hash,
		mask:      uint64(size - 1),
		slots:     make([]probeSlot[K, V], size),
		capacity:  capacity,
		quadratic: quadratic,
	}
}

// offset returns the i-th probe stride. Triangular strides visit every
// slot of a power-of-two table exactly once, so the quadratic walk is as
// exhaustive as the linear one.
func (t *probeTable[K, V]) offset(i uint64) uint64 {
	if t.quadratic {
		return i * (i + 1) / 2
	}

	return i
}

func (t *probeTable[K, V]) insert(key K, value V) error {
	h := t.hash(key)
	grave := -1

	for i := uint64(0); i < uint64(len(t.slots)); i++ {
		idx := (h + t.offset(i)) & t.mask
		s := &t.slots[idx]

		switch s.state {
		case slotEmpty:
			if t.live == t.capacity {
				return ErrCapacityExhausted
			}

			// Prefer a tombstone crossed earlier so graves get
			// recycled instead of piling up.
			if grave >= 0 {
				s = &t.slots[grave]
			}

			*s = probeSlot[K, V]{key: key, value: value, state: slotUsed}
			t.live++

			return nil
		case slotDead:
			if grave < 0 {
				grave = int(idx)
			}
		case slotUsed:
			if s.key == key {
				return ErrDuplicateKey
			}
		}
	}

	// The walk crossed no empty slot: the table is saturated with live
	// entries and tombstones. Any grave found is still a valid home.
	if grave >= 0 && t.live < t.capacity {
		t.slots[grave] = probeSlot[K, V]{key: key, value: value, state: slotUsed}
		t.live++

		return nil
	}

	return ErrCapacityExhausted
}

// find returns the slot index holding key, -1 when absent. The scan stops
// at the first empty slot: an entry always lives on its probe path before
// any slot that was empty when it was inserted, and slots never revert
// from dead to empty.
func (t *probeTable[K, V]) find(key K) int {
	h := t.hash(key)

	for i := uint64(0); i < uint64(len(t.slots)); i++ {
		idx := (h + t.offset(i)) & t.mask
		s := &t.slots[idx]

		if s.state == slotEmpty {
			return -1
		}

		if s.state == slotUsed && s.key == key {
			return int(idx)
		}
	}

	return -1
}

func (t *probeTable[K, V]) update(key K, value V) bool {
	idx := t.find(key)
	if idx < 0 {
		return false
	}

	t.slots[idx].value = value

	return true
}

func (t *probeTable[K, V]) lookup(key K) (V, bool) {
	idx := t.find(key)
	if idx < 0 {
		var zero V

		return zero, false
	}

	return t.slots[idx].value, true
}

func (t *probeTable[K, V]) remove(key K) (V, bool) {
	idx := t.find(key)
	if idx < 0 {
		var zero V

		return zero, false
	}

	value := t.slots[idx].value

	// The payload is zeroed with the state change so removed entries do
	// not pin referenced memory.
	t.slots[idx] = probeSlot[K, V]{state: slotDead}
	t.live--

	return value, true
}

func (t *probeTable[K, V]) clear() {
	clear(t.slots)
	t.live = 0
}

func (t *probeTable[K, V]) positions() int { return len(t.slots) }

func (t *probeTable[K, V]) at(pos int) (K, V, bool) {
	s := &t.slots[pos]
	if s.state != slotUsed {
		var (
			zeroK K
			zeroV V
		)

		return zeroK, zeroV, false
	}

	return s.key, s.value, true
}

func (t *probeTable[K, V]) len() int { return t.live }

func (t *probeTable[K, V]) cap() int { return t.capacity }
