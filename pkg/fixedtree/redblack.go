package fixedtree

// Red-black colors live in the node tag. Red is the zero value, so a
// freshly acquired node is red before its fixup runs; the sentinel index 0
// always reads black.
const (
	colorRed   uint32 = 0
	colorBlack uint32 = 1
)

// RedBlack is the red-black strategy. It tolerates a looser height bound
// than AVL (at most twice the minimal height) in exchange for at most two
// rotations per insert and three per delete, which makes it the default
// for update-heavy workloads.
type RedBlack[K, V any] struct {
	core[K, V]
}

// Strategy reports StrategyRedBlack.
func (t *RedBlack[K, V]) Strategy() Strategy { return StrategyRedBlack }

// Height returns the current tree height. O(n): red-black nodes do not
// carry height, so this walks the tree and is meant for diagnostics.
func (t *RedBlack[K, V]) Height() int {
	return t.heightOf(t.root)
}

func (t *RedBlack[K, V]) heightOf(n uint32) int {
	if n == 0 {
		return 0
	}

	return 1 + max(t.heightOf(t.node(n).left), t.heightOf(t.node(n).right))
}

// Insert adds key with value. ErrDuplicateKey when the key is present,
// ErrCapacityExhausted when the arena is full.
func (t *RedBlack[K, V]) Insert(key K, value V) error {
	n, err := t.acquireNode(key, value)
	if err != nil {
		return err
	}

	if _, err := t.bstInsert(n); err != nil {
		t.arena.release(n)

		return err
	}

	t.insertFixup(n)

	return nil
}

// Erase removes key. ErrKeyNotFound when absent.
func (t *RedBlack[K, V]) Erase(key K) error {
	n := t.find(key)
	if n == 0 {
		return ErrKeyNotFound
	}

	t.eraseNode(n)

	return nil
}

func (t *RedBlack[K, V]) color(n uint32) uint32 {
	if n == 0 {
		return colorBlack
	}

	return t.node(n).tag
}

func (t *RedBlack[K, V]) setColor(n uint32, c uint32) {
	if n != 0 {
		t.node(n).tag = c
	}
}

// insertFixup restores the red-black properties after n was linked in red.
func (t *RedBlack[K, V]) insertFixup(n uint32) {
	for n != t.root && t.color(t.node(n).parent) == colorRed {
		parent := t.node(n).parent

		grandparent := t.node(parent).parent
		if grandparent == 0 {
			break
		}

		isLeft := parent == t.node(grandparent).left
		n = t.insertFixupCase(n, parent, grandparent, isLeft)
	}

	t.setColor(t.root, colorBlack)
}

// insertFixupCase handles one side of the insert fixup. When leftCase is
// true, parent is grandparent's left child; the other side is its mirror.
func (t *RedBlack[K, V]) insertFixupCase(n, parent, grandparent uint32, leftCase bool) uint32 {
	uncle := t.childOf(grandparent, !leftCase)

	if t.color(uncle) == colorRed {
		t.setColor(parent, colorBlack)
		t.setColor(uncle, colorBlack)
		t.setColor(grandparent, colorRed)

		return grandparent
	}

	// The inner child rotates up first so the final rotation sees the
	// straight-line case.
	if n == t.childOf(parent, !leftCase) {
		t.rotate(parent, leftCase)
		n, parent = parent, n
	}

	t.setColor(parent, colorBlack)
	t.setColor(grandparent, colorRed)
	t.rotate(grandparent, !leftCase)

	return n
}

// eraseNode unlinks n, keeping node identity for every other key: a
// two-child deletion moves the in-order successor node into n's position
// and the successor inherits n's color, so the black heights around n's
// old slot are unchanged by the move itself.
func (t *RedBlack[K, V]) eraseNode(n uint32) {
	nd := t.node(n)
	removedColor := nd.tag

	var x, xParent uint32

	switch {
	case nd.left == 0:
		x = nd.right
		xParent = nd.parent
		t.transplant(n, x)
	case nd.right == 0:
		x = nd.left
		xParent = nd.parent
		t.transplant(n, x)
	default:
		succ := t.minimum(nd.right)
		removedColor = t.node(succ).tag
		x = t.node(succ).right

		if t.node(succ).parent == n {
			xParent = succ
		} else {
			xParent = t.node(succ).parent

			t.transplant(succ, x)
			t.node(succ).right = nd.right
			t.node(nd.right).parent = succ
		}

		t.transplant(n, succ)
		t.node(succ).left = nd.left
		t.node(nd.left).parent = succ
		t.node(succ).tag = nd.tag
	}

	t.arena.release(n)

	if removedColor == colorBlack {
		t.deleteFixup(x, xParent)
	}
}

// deleteFixup restores the red-black properties after a black node was
// removed. x is the child that took its place and may be 0; the position
// is pinned by parent, so the fixup also runs for an absent child instead
// of skipping it and leaking a black-height violation.
func (t *RedBlack[K, V]) deleteFixup(x, parent uint32) {
	for x != t.root && t.color(x) == colorBlack && parent != 0 {
		isLeft := x == t.node(parent).left
		x, parent = t.deleteFixupCase(parent, isLeft)
	}

	t.setColor(x, colorBlack)
}

// deleteFixupCase runs one iteration of the delete fixup for the doubly
// black position under parent on the isLeft side. It returns the next
// (x, parent) pair; x == root terminates the loop.
func (t *RedBlack[K, V]) deleteFixupCase(parent uint32, isLeft bool) (uint32, uint32) {
	sibling := t.childOf(parent, !isLeft)

	if t.color(sibling) == colorRed {
		t.setColor(sibling, colorBlack)
		t.setColor(parent, colorRed)
		t.rotate(parent, isLeft)

		sibling = t.childOf(parent, !isLeft)
	}

	inner := t.childOf(sibling, isLeft)
	outer := t.childOf(sibling, !isLeft)

	if t.color(inner) == colorBlack && t.color(outer) == colorBlack {
		t.setColor(sibling, colorRed)

		return parent, t.node(parent).parent
	}

	if t.color(outer) == colorBlack {
		t.setColor(inner, colorBlack)
		t.setColor(sibling, colorRed)
		t.rotate(sibling, !isLeft)

		sibling = t.childOf(parent, !isLeft)
		outer = t.childOf(sibling, !isLeft)
	}

	t.setColor(sibling, t.color(parent))
	t.setColor(parent, colorBlack)
	t.setColor(outer, colorBlack)
	t.rotate(parent, isLeft)

	return t.root, 0
}
