package fixedtree

// node is a tree slot addressed by its index in the arena. Links are
// indexes rather than pointers; index 0 is the shared nil sentinel, so all
// live nodes sit at indexes greater than 0.
//
// tag is owned by the balancing strategy: the AVL tree stores the subtree
// height in it, the red-black tree stores the color. Either way the zero
// value is meaningful for an absent node (height 0, color red for a fresh
// node before linking).
type node[K, V any] struct {
	key    K
	value  V
	parent uint32
	left   uint32
	right  uint32
	tag    uint32
	used   bool
}

// arena is a fixed pool of nodes allocated once at construction. Free slots
// form a LIFO list threaded through their right links, so acquire and
// release are O(1) and the pool never grows.
type arena[K, V any] struct {
	nodes []node[K, V]
	free  uint32
	live  int
}

// newArena allocates capacity+1 slots up front; slot 0 stays reserved as
// the nil sentinel. This is the only allocation the arena ever performs.
func newArena[K, V any](capacity int) *arena[K, V] {
	if capacity < 1 {
		panic("fixedtree: capacity must be positive")
	}

	a := &arena[K, V]{nodes: make([]node[K, V], capacity+1)}
	a.thread()

	return a
}

// thread rebuilds the free list over every slot above the sentinel.
func (a *arena[K, V]) thread() {
	last := uint32(len(a.nodes) - 1)
	for i := uint32(1); i < last; i++ {
		a.nodes[i].right = i + 1
	}

	a.nodes[last].right = 0
	a.free = 1
	a.live = 0
}

// acquire pops the free-list head and hands it out reset to a detached
// leaf holding key and value.
func (a *arena[K, V]) acquire(key K, value V) (uint32, error) {
	if a.free == 0 {
		return 0, ErrCapacityExhausted
	}

	n := a.free
	a.free = a.nodes[n].right
	a.nodes[n] = node[K, V]{key: key, value: value, used: true}
	a.live++

	return n, nil
}

// release pushes n back onto the free list. The slot is fully zeroed: a
// stale balance tag would poison the next acquire, and a retained key or
// value would pin heap objects past their lifetime.
func (a *arena[K, V]) release(n uint32) {
	doAssert(n != 0 && a.nodes[n].used)

	a.nodes[n] = node[K, V]{right: a.free}
	a.free = n
	a.live--
}

// reset zeroes every slot and rethreads the free list.
func (a *arena[K, V]) reset() {
	clear(a.nodes)
	a.thread()
}

func (a *arena[K, V]) len() int { return a.live }

func (a *arena[K, V]) cap() int { return len(a.nodes) - 1 }

func doAssert(b bool) {
	if !b {
		panic("fixedtree: internal consistency error")
	}
}
