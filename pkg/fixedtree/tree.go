// Package fixedtree provides fixed-capacity balanced binary search trees
// that never allocate after construction. Nodes live in a pre-allocated
// arena and are recycled through an intrusive free list, making the trees
// suitable for long-running processes with hard memory ceilings.
//
// Two balancing strategies are available behind the same Tree interface:
// a red-black tree (fewer rotations per update) and an AVL tree (tighter
// height bound, faster lookups). The strategy is chosen at construction
// through New or NewFunc.
//
// Trees are not safe for concurrent use. Synchronization belongs to the
// caller; the fixedmap package wraps a Tree behind a single mutex.
package fixedtree

// core holds the state and primitives shared by both balancing strategies:
// the node arena, the key comparator, and the standard unbalanced BST
// operations the strategies build their fixups on.
type core[K, V any] struct {
	arena   *arena[K, V]
	compare func(K, K) int
	root    uint32
}

// node returns the slot for index n. The pointer stays valid for the
// lifetime of the tree because the arena never reallocates.
func (c *core[K, V]) node(n uint32) *node[K, V] {
	return &c.arena.nodes[n]
}

// childOf returns the left or right child of n.
func (c *core[K, V]) childOf(n uint32, left bool) uint32 {
	if left {
		return c.node(n).left
	}

	return c.node(n).right
}

// find descends from the root to the node holding key, 0 when absent.
func (c *core[K, V]) find(key K) uint32 {
	n := c.root
	for n != 0 {
		cmp := c.compare(key, c.node(n).key)
		if cmp == 0 {
			return n
		}

		if cmp < 0 {
			n = c.node(n).left
		} else {
			n = c.node(n).right
		}
	}

	return 0
}

// acquireNode reserves an arena slot for key. A full arena still reports
// ErrDuplicateKey for keys that are already present, since that insert
// would fail with or without free space.
func (c *core[K, V]) acquireNode(key K, value V) (uint32, error) {
	n, err := c.arena.acquire(key, value)
	if err != nil {
		if c.find(key) != 0 {
			return 0, ErrDuplicateKey
		}

		return 0, err
	}

	return n, nil
}

// bstInsert links the detached leaf n into position and returns the parent
// it hangs from (0 when n became the root). A key collision is detected
// before any link is touched, so the caller can simply release n.
func (c *core[K, V]) bstInsert(n uint32) (uint32, error) {
	key := c.node(n).key

	var parent uint32

	var cmp int

	cur := c.root
	for cur != 0 {
		parent = cur

		cmp = c.compare(key, c.node(cur).key)
		if cmp == 0 {
			return 0, ErrDuplicateKey
		}

		if cmp < 0 {
			cur = c.node(cur).left
		} else {
			cur = c.node(cur).right
		}
	}

	c.node(n).parent = parent

	switch {
	case parent == 0:
		c.root = n
	case cmp < 0:
		c.node(parent).left = n
	default:
		c.node(parent).right = n
	}

	return parent, nil
}

// rotate performs a single rotation at n. When left is true the right
// child becomes the subtree root, otherwise the left child does.
func (c *core[K, V]) rotate(n uint32, left bool) {
	nd := c.node(n)

	var pivot uint32

	if left {
		pivot = nd.right
		doAssert(pivot != 0)

		p := c.node(pivot)
		nd.right = p.left

		if p.left != 0 {
			c.node(p.left).parent = n
		}

		p.left = n
	} else {
		pivot = nd.left
		doAssert(pivot != 0)

		p := c.node(pivot)
		nd.left = p.right

		if p.right != 0 {
			c.node(p.right).parent = n
		}

		p.right = n
	}

	c.node(pivot).parent = nd.parent

	switch {
	case nd.parent == 0:
		c.root = pivot
	case n == c.node(nd.parent).left:
		c.node(nd.parent).left = pivot
	default:
		c.node(nd.parent).right = pivot
	}

	nd.parent = pivot
}

// transplant replaces the subtree rooted at u with the one rooted at v.
// v may be 0; u's own child links are left untouched.
func (c *core[K, V]) transplant(u, v uint32) {
	up := c.node(u).parent

	switch {
	case up == 0:
		c.root = v
	case u == c.node(up).left:
		c.node(up).left = v
	default:
		c.node(up).right = v
	}

	if v != 0 {
		c.node(v).parent = up
	}
}

// minimum returns the leftmost node of the subtree rooted at n.
func (c *core[K, V]) minimum(n uint32) uint32 {
	for c.node(n).left != 0 {
		n = c.node(n).left
	}

	return n
}

// maximum returns the rightmost node of the subtree rooted at n.
func (c *core[K, V]) maximum(n uint32) uint32 {
	for c.node(n).right != 0 {
		n = c.node(n).right
	}

	return n
}

// successor returns the in-order successor of n, 0 past the maximum.
func (c *core[K, V]) successor(n uint32) uint32 {
	if r := c.node(n).right; r != 0 {
		return c.minimum(r)
	}

	parent := c.node(n).parent
	for parent != 0 && n == c.node(parent).right {
		n = parent
		parent = c.node(parent).parent
	}

	return parent
}

// predecessor returns the in-order predecessor of n, 0 before the minimum.
func (c *core[K, V]) predecessor(n uint32) uint32 {
	if l := c.node(n).left; l != 0 {
		return c.maximum(l)
	}

	parent := c.node(n).parent
	for parent != 0 && n == c.node(parent).left {
		n = parent
		parent = c.node(parent).parent
	}

	return parent
}

// Len returns the number of live keys.
func (c *core[K, V]) Len() int { return c.arena.len() }

// Cap returns the fixed capacity chosen at construction.
func (c *core[K, V]) Cap() int { return c.arena.cap() }

// Clear releases every node and rethreads the free list.
func (c *core[K, V]) Clear() {
	c.arena.reset()
	c.root = 0
}

// Find returns the value stored under key.
func (c *core[K, V]) Find(key K) (V, bool) {
	n := c.find(key)
	if n == 0 {
		var zero V

		return zero, false
	}

	return c.node(n).value, true
}

// FindNode returns the node index holding key, 0 when absent. Node indexes
// are stable until the node is erased or the tree is cleared.
func (c *core[K, V]) FindNode(key K) uint32 {
	return c.find(key)
}

// LowerBound returns the first node whose key is not less than key,
// 0 when every key is smaller.
func (c *core[K, V]) LowerBound(key K) uint32 {
	var best uint32

	n := c.root
	for n != 0 {
		if c.compare(c.node(n).key, key) >= 0 {
			best = n
			n = c.node(n).left
		} else {
			n = c.node(n).right
		}
	}

	return best
}

// UpperBound returns the first node whose key is greater than key,
// 0 when no key is.
func (c *core[K, V]) UpperBound(key K) uint32 {
	var best uint32

	n := c.root
	for n != 0 {
		if c.compare(c.node(n).key, key) > 0 {
			best = n
			n = c.node(n).left
		} else {
			n = c.node(n).right
		}
	}

	return best
}

// Min returns the node with the smallest key, 0 when the tree is empty.
func (c *core[K, V]) Min() uint32 {
	if c.root == 0 {
		return 0
	}

	return c.minimum(c.root)
}

// Max returns the node with the largest key, 0 when the tree is empty.
func (c *core[K, V]) Max() uint32 {
	if c.root == 0 {
		return 0
	}

	return c.maximum(c.root)
}

// Next returns the in-order successor of node n, 0 past the maximum.
func (c *core[K, V]) Next(n uint32) uint32 {
	return c.successor(n)
}

// Prev returns the in-order predecessor of node n, 0 before the minimum.
func (c *core[K, V]) Prev(n uint32) uint32 {
	return c.predecessor(n)
}

// KeyAt returns the key stored at node n.
func (c *core[K, V]) KeyAt(n uint32) K {
	doAssert(n != 0 && c.node(n).used)

	return c.node(n).key
}

// ValueAt returns the value stored at node n.
func (c *core[K, V]) ValueAt(n uint32) V {
	doAssert(n != 0 && c.node(n).used)

	return c.node(n).value
}

// SetValueAt overwrites the value stored at node n.
func (c *core[K, V]) SetValueAt(n uint32, value V) {
	doAssert(n != 0 && c.node(n).used)

	c.node(n).value = value
}
