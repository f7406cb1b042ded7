package fixedhash

// chainNode is a pool slot holding one entry and its bucket-chain link.
// Free slots are threaded into a LIFO list through next; slot 0 is the
// shared nil sentinel.
type chainNode[K comparable, V any] struct {
	key   K
	value V
	next  uint32
	used  bool
}

// chainTable resolves collisions by linking entries into per-bucket lists.
// All nodes come from one pre-allocated pool, so chains cost no allocation
// and the pool index doubles as a stable scan position.
type chainTable[K comparable, V any] struct {
	hash  func(K) uint64
	mask  uint64
	heads []uint32
	pool  []chainNode[K, V]
	free  uint32
	live  int
}

func newChainTable[K comparable, V any](capacity int, hash func(K) uint64) *chainTable[K, V] {
	size := tableSize(capacity)

	t := &chainTable[K, V]{
		hash:  hash,
		mask:  uint64(size - 1),
		heads: make([]uint32, size),
		pool:  make([]chainNode[K, V], capacity+1),
	}
	t.thread()

	return t
}

func (t *chainTable[K, V]) thread() {
	last := uint32(len(t.pool) - 1)
	for i := uint32(1); i < last; i++ {
		t.pool[i].next = i + 1
	}

	t.pool[last].next = 0
	t.free = 1
	t.live = 0
}

func (t *chainTable[K, V]) bucket(key K) uint64 {
	return t.hash(key) & t.mask
}

func (t *chainTable[K, V]) insert(key K, value V) error {
	b := t.bucket(key)

	for n := t.heads[b]; n != 0; n = t.pool[n].next {
		if t.pool[n].key == key {
			return ErrDuplicateKey
		}
	}

	if t.free == 0 {
		return ErrCapacityExhausted
	}

	n := t.free
	t.free = t.pool[n].next
	t.pool[n] = chainNode[K, V]{key: key, value: value, next: t.heads[b], used: true}
	t.heads[b] = n
	t.live++

	return nil
}

func (t *chainTable[K, V]) update(key K, value V) bool {
	b := t.bucket(key)

	for n := t.heads[b]; n != 0; n = t.pool[n].next {
		if t.pool[n].key == key {
			t.pool[n].value = value

			return true
		}
	}

	return false
}

func (t *chainTable[K, V]) lookup(key K) (V, bool) {
	b := t.bucket(key)

	for n := t.heads[b]; n != 0; n = t.pool[n].next {
		if t.pool[n].key == key {
			return t.pool[n].value, true
		}
	}

	var zero V

	return zero, false
}

func (t *chainTable[K, V]) remove(key K) (V, bool) {
	b := t.bucket(key)

	var prev uint32

	for n := t.heads[b]; n != 0; n = t.pool[n].next {
		if t.pool[n].key != key {
			prev = n

			continue
		}

		if prev == 0 {
			t.heads[b] = t.pool[n].next
		} else {
			t.pool[prev].next = t.pool[n].next
		}

		value := t.pool[n].value

		// Full reset unpins references and leaves only the free link.
		t.pool[n] = chainNode[K, V]{next: t.free}
		t.free = n
		t.live--

		return value, true
	}

	var zero V

	return zero, false
}

func (t *chainTable[K, V]) clear() {
	clear(t.pool)
	clear(t.heads)
	t.thread()
}

func (t *chainTable[K, V]) positions() int { return len(t.pool) }

func (t *chainTable[K, V]) at(pos int) (K, V, bool) {
	n := &t.pool[pos]
	if !n.used {
		var (
			zeroK K
			zeroV V
		)

		return zeroK, zeroV, false
	}

	return n.key, n.value, true
}

func (t *chainTable[K, V]) len() int { return t.live }

func (t *chainTable[K, V]) cap() int { return len(t.pool) - 1 }
