package fixedtree

// AVL is the height-balanced strategy. Every node's tag holds the height
// of its subtree (leaf = 1, absent = 0), and updates rebalance bottom-up
// until the balance factor of every touched node is back within [-1, 1].
// Lookups are the fastest of the two strategies; updates may rotate on
// several levels of the same path.
type AVL[K, V any] struct {
	core[K, V]
}

// Strategy reports StrategyAVL.
func (t *AVL[K, V]) Strategy() Strategy { return StrategyAVL }

// Height returns the current tree height. O(1): the root's tag is
// maintained on every update.
func (t *AVL[K, V]) Height() int {
	return t.height(t.root)
}

// Insert adds key with value. ErrDuplicateKey when the key is present,
// ErrCapacityExhausted when the arena is full.
func (t *AVL[K, V]) Insert(key K, value V) error {
	n, err := t.acquireNode(key, value)
	if err != nil {
		return err
	}

	parent, err := t.bstInsert(n)
	if err != nil {
		t.arena.release(n)

		return err
	}

	t.node(n).tag = 1
	t.rebalance(parent)

	return nil
}

// Erase removes key. ErrKeyNotFound when absent.
func (t *AVL[K, V]) Erase(key K) error {
	n := t.find(key)
	if n == 0 {
		return ErrKeyNotFound
	}

	t.eraseNode(n)

	return nil
}

// eraseNode unlinks n, keeping node identity for every other key: a
// two-child deletion moves the in-order successor node into n's position
// instead of copying its payload, so outstanding node indexes stay valid.
func (t *AVL[K, V]) eraseNode(n uint32) {
	nd := t.node(n)

	var start uint32

	switch {
	case nd.left == 0:
		start = nd.parent
		t.transplant(n, nd.right)
	case nd.right == 0:
		start = nd.parent
		t.transplant(n, nd.left)
	default:
		succ := t.minimum(nd.right)

		if t.node(succ).parent == n {
			start = succ
		} else {
			start = t.node(succ).parent

			t.transplant(succ, t.node(succ).right)
			t.node(succ).right = nd.right
			t.node(nd.right).parent = succ
		}

		t.transplant(n, succ)
		t.node(succ).left = nd.left
		t.node(nd.left).parent = succ
	}

	t.arena.release(n)
	t.rebalance(start)
}

// rebalance walks from n to the root, refreshing heights and rotating
// wherever the balance factor left [-1, 1]. The parent is captured before
// any rotation because a rotation moves n below its replacement.
func (t *AVL[K, V]) rebalance(n uint32) {
	for n != 0 {
		parent := t.node(n).parent

		t.updateHeight(n)
		t.restore(n)

		n = parent
	}
}

// restore applies the rotation matching n's imbalance. The inner (LR / RL)
// case rotates the child first so a single outer rotation finishes the job.
func (t *AVL[K, V]) restore(n uint32) {
	bf := t.balanceFactor(n)

	switch {
	case bf > 1:
		if t.balanceFactor(t.node(n).left) < 0 {
			t.rotateRefresh(t.node(n).left, true)
		}

		t.rotateRefresh(n, false)
	case bf < -1:
		if t.balanceFactor(t.node(n).right) > 0 {
			t.rotateRefresh(t.node(n).right, false)
		}

		t.rotateRefresh(n, true)
	}
}

// rotateRefresh rotates at n and refreshes the two heights the rotation
// disturbed: n first, then the pivot now above it.
func (t *AVL[K, V]) rotateRefresh(n uint32, left bool) {
	t.rotate(n, left)
	t.updateHeight(n)
	t.updateHeight(t.node(n).parent)
}

func (t *AVL[K, V]) height(n uint32) int {
	if n == 0 {
		return 0
	}

	return int(t.node(n).tag)
}

func (t *AVL[K, V]) updateHeight(n uint32) {
	nd := t.node(n)
	nd.tag = uint32(1 + max(t.height(nd.left), t.height(nd.right)))
}

func (t *AVL[K, V]) balanceFactor(n uint32) int {
	nd := t.node(n)

	return t.height(nd.left) - t.height(nd.right)
}
