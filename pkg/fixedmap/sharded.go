package fixedmap

import (
	"cmp"
	"hash/maphash"
)

// Sharded spreads a fixed total capacity over independent Map shards, one
// mutex per shard, so concurrent writers on different shards stop
// contending on a single lock. Keys are routed by hash, which gives up
// the global ordering of a single Map: iteration order and bounds only
// hold within a shard.
type Sharded[K cmp.Ordered, V any] struct {
	seed   maphash.Seed
	shards []*Map[K, V]
}

// NewSharded builds shardCount maps whose capacities sum to totalCapacity;
// the remainder lands on the first shards. Panics when shardCount is not
// positive or totalCapacity cannot give every shard at least one slot.
func NewSharded[K cmp.Ordered, V any](shardCount, totalCapacity int, opts ...Option) (*Sharded[K, V], error) {
	if shardCount < 1 {
		panic("fixedmap: shard count must be positive")
	}

	if totalCapacity < shardCount {
		panic("fixedmap: total capacity must cover every shard")
	}

	s := &Sharded[K, V]{
		seed:   maphash.MakeSeed(),
		shards: make([]*Map[K, V], shardCount),
	}

	base := totalCapacity / shardCount
	extra := totalCapacity % shardCount

	for i := range s.shards {
		capacity := base
		if i < extra {
			capacity++
		}

		shard, err := New[K, V](capacity, opts...)
		if err != nil {
			return nil, err
		}

		s.shards[i] = shard
	}

	return s, nil
}

// shardFor routes key to its shard.
func (s *Sharded[K, V]) shardFor(key K) *Map[K, V] {
	h := maphash.Comparable(s.seed, key)

	return s.shards[h%uint64(len(s.shards))]
}

// ShardCount returns the number of shards.
func (s *Sharded[K, V]) ShardCount() int { return len(s.shards) }

// Insert adds key to its shard. Note that a full shard rejects the insert
// even when other shards still have room; that is the cost of fixed
// per-shard arenas.
func (s *Sharded[K, V]) Insert(key K, value V) error {
	return s.shardFor(key).Insert(key, value)
}

// InsertOrAssign inserts or overwrites key in its shard.
func (s *Sharded[K, V]) InsertOrAssign(key K, value V) (bool, error) {
	return s.shardFor(key).InsertOrAssign(key, value)
}

// Erase removes key from its shard.
func (s *Sharded[K, V]) Erase(key K) error {
	return s.shardFor(key).Erase(key)
}

// Get returns the value stored under key.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	return s.shardFor(key).Get(key)
}

// Contains reports whether key is present.
func (s *Sharded[K, V]) Contains(key K) bool {
	return s.shardFor(key).Contains(key)
}

// Extract removes key from its shard and returns the value it held.
func (s *Sharded[K, V]) Extract(key K) (V, error) {
	return s.shardFor(key).Extract(key)
}

// Len sums the entry counts of all shards.
func (s *Sharded[K, V]) Len() int {
	total := 0
	for _, shard := range s.shards {
		total += shard.Len()
	}

	return total
}

// Cap sums the fixed capacities of all shards.
func (s *Sharded[K, V]) Cap() int {
	total := 0
	for _, shard := range s.shards {
		total += shard.Cap()
	}

	return total
}

// Clear empties every shard.
func (s *Sharded[K, V]) Clear() {
	for _, shard := range s.shards {
		shard.Clear()
	}
}

// Stats aggregates the counters of all shards.
func (s *Sharded[K, V]) Stats() Stats {
	var total Stats
	for _, shard := range s.shards {
		stats := shard.Stats()
		total.add(stats)
	}

	return total
}

// ForEachShard calls fn for every shard in index order. The shards keep
// their own locking; fn gets live maps, not copies.
func (s *Sharded[K, V]) ForEachShard(fn func(index int, shard *Map[K, V])) {
	for i, shard := range s.shards {
		fn(i, shard)
	}
}
