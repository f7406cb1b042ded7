package fixedhash

import "math/bits"

// table is the unsynchronized storage layer behind Map. Both
// implementations expose entries through stable scan positions: an entry
// keeps its position until it is removed, which lets iteration resume
// across lock releases without auxiliary state.
type table[K comparable, V any] interface {
	// insert adds key, reporting ErrDuplicateKey before
	// ErrCapacityExhausted so a full table still diagnoses duplicates.
	insert(key K, value V) error

	// update overwrites the value under key when present.
	update(key K, value V) bool

	// lookup returns the value under key.
	lookup(key K) (V, bool)

	// remove deletes key and returns the value it held.
	remove(key K) (V, bool)

	// clear drops every entry, retaining capacity.
	clear()

	// positions returns the size of the scan space; at reports the entry
	// held at one position.
	positions() int
	at(pos int) (K, V, bool)

	len() int
	cap() int
}

// tableSize returns the smallest power of two that is at least n.
func tableSize(n int) int {
	return 1 << bits.Len(uint(n-1))
}
