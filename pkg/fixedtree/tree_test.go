package fixedtree

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	treeTestCapacity   = 64
	randomizedOps      = 5000
	randomizedKeySpace = 256
	randomizedSeed     = 1
)

// allStrategies drives the shared behavior suite over both balancing
// strategies, mirroring how callers pick one through the factory.
var allStrategies = []Strategy{StrategyRedBlack, StrategyAVL}

func newTestTree(t *testing.T, strategy Strategy, capacity int) Tree[int, string] {
	t.Helper()

	tree, err := New[int, string](strategy, capacity)
	require.NoError(t, err)

	return tree
}

// checkStructure validates the link and ordering invariants every strategy
// must uphold: parent pointers mirror child pointers, in-order traversal
// is sorted, and the node count matches Len.
func checkStructure[K any, V any](t *testing.T, c *core[K, V]) {
	t.Helper()

	count := 0

	var walk func(n, parent uint32)
	walk = func(n, parent uint32) {
		if n == 0 {
			return
		}

		nd := c.node(n)
		require.True(t, nd.used, "linked node %d is not marked used", n)
		require.Equal(t, parent, nd.parent, "parent link broken at node %d", n)

		if nd.left != 0 {
			require.Negative(t, c.compare(c.node(nd.left).key, nd.key))
		}

		if nd.right != 0 {
			require.Positive(t, c.compare(c.node(nd.right).key, nd.key))
		}

		count++

		walk(nd.left, n)
		walk(nd.right, n)
	}

	walk(c.root, 0)
	require.Equal(t, c.Len(), count, "reachable nodes disagree with Len")
}

// checkInvariants dispatches to the strategy-specific invariant walker.
func checkInvariants(t *testing.T, tree Tree[int, string]) {
	t.Helper()

	switch impl := tree.(type) {
	case *AVL[int, string]:
		checkStructure(t, &impl.core)
		checkAVLBalance(t, impl)
	case *RedBlack[int, string]:
		checkStructure(t, &impl.core)
		checkRedBlackProperties(t, impl)
	default:
		t.Fatalf("unknown tree implementation %T", tree)
	}
}

func collectKeys(tree Tree[int, string]) []int {
	keys := make([]int, 0, tree.Len())
	for n := tree.Min(); n != 0; n = tree.Next(n) {
		keys = append(keys, tree.KeyAt(n))
	}

	return keys
}

func TestTreeInsertFindErase(t *testing.T) {
	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, treeTestCapacity)

			require.NoError(t, tree.Insert(2, "two"))
			require.NoError(t, tree.Insert(1, "one"))
			require.NoError(t, tree.Insert(3, "three"))

			v, ok := tree.Find(2)
			require.True(t, ok)
			assert.Equal(t, "two", v)

			_, ok = tree.Find(4)
			assert.False(t, ok)

			require.NoError(t, tree.Erase(2))
			assert.Equal(t, 2, tree.Len())

			_, ok = tree.Find(2)
			assert.False(t, ok)

			assert.ErrorIs(t, tree.Erase(2), ErrKeyNotFound)
			checkInvariants(t, tree)
		})
	}
}

func TestTreeDuplicateInsertLeavesSlotFree(t *testing.T) {
	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, 2)

			require.NoError(t, tree.Insert(1, "a"))
			require.ErrorIs(t, tree.Insert(1, "b"), ErrDuplicateKey)

			// The slot grabbed for the failed insert must be recycled.
			require.NoError(t, tree.Insert(2, "c"))

			v, ok := tree.Find(1)
			require.True(t, ok)
			assert.Equal(t, "a", v, "duplicate insert must not overwrite")
		})
	}
}

func TestTreeCapacityExhaustedAndRecovery(t *testing.T) {
	const capacity = 4

	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, capacity)

			for i := 0; i < capacity; i++ {
				require.NoError(t, tree.Insert(i, "v"))
			}

			assert.ErrorIs(t, tree.Insert(capacity, "v"), ErrCapacityExhausted)
			assert.Equal(t, capacity, tree.Len())

			// A key that is already present stays a duplicate even
			// when the arena has no room left.
			assert.ErrorIs(t, tree.Insert(0, "v"), ErrDuplicateKey)

			require.NoError(t, tree.Erase(0))
			require.NoError(t, tree.Insert(capacity, "v"))
			assert.Equal(t, capacity, tree.Len())

			checkInvariants(t, tree)
		})
	}
}

func TestTreeOrderedNavigation(t *testing.T) {
	keys := []int{50, 20, 70, 10, 30, 60, 80, 25, 35}

	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, treeTestCapacity)

			for _, k := range keys {
				require.NoError(t, tree.Insert(k, "v"))
			}

			want := slices.Clone(keys)
			slices.Sort(want)
			assert.Equal(t, want, collectKeys(tree))

			// Backward walk from the maximum.
			var backward []int
			for n := tree.Max(); n != 0; n = tree.Prev(n) {
				backward = append(backward, tree.KeyAt(n))
			}

			slices.Reverse(backward)
			assert.Equal(t, want, backward)
		})
	}
}

func TestTreeBounds(t *testing.T) {
	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, treeTestCapacity)

			for _, k := range []int{10, 20, 30, 40} {
				require.NoError(t, tree.Insert(k, "v"))
			}

			assert.Equal(t, 20, tree.KeyAt(tree.LowerBound(15)))
			assert.Equal(t, 20, tree.KeyAt(tree.LowerBound(20)))
			assert.Equal(t, 30, tree.KeyAt(tree.UpperBound(20)))
			assert.Zero(t, tree.LowerBound(41))
			assert.Zero(t, tree.UpperBound(40))
			assert.Equal(t, 10, tree.KeyAt(tree.LowerBound(-5)))
		})
	}
}

func TestTreeClear(t *testing.T) {
	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, 8)

			for i := 0; i < 8; i++ {
				require.NoError(t, tree.Insert(i, "v"))
			}

			tree.Clear()

			assert.Zero(t, tree.Len())
			assert.Zero(t, tree.Min())
			assert.Zero(t, tree.Height())

			// Full capacity is available again.
			for i := 0; i < 8; i++ {
				require.NoError(t, tree.Insert(i, "v"))
			}

			checkInvariants(t, tree)
		})
	}
}

func TestTreeNodeIdentitySurvivesUnrelatedErase(t *testing.T) {
	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, treeTestCapacity)

			for _, k := range []int{40, 20, 60, 10, 30, 50, 70} {
				require.NoError(t, tree.Insert(k, "v"))
			}

			n50 := tree.FindNode(50)
			require.NotZero(t, n50)

			// Erasing a two-child node moves its successor node by
			// relinking, never by copying payloads over other nodes.
			require.NoError(t, tree.Erase(40))

			require.Equal(t, n50, tree.FindNode(50))
			assert.Equal(t, 50, tree.KeyAt(n50))
		})
	}
}

func TestTreeRandomizedAgainstOracle(t *testing.T) {
	for _, strategy := range allStrategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tree := newTestTree(t, strategy, randomizedKeySpace)
			oracle := make(map[int]string, randomizedKeySpace)
			rng := rand.New(rand.NewSource(randomizedSeed))

			for i := 0; i < randomizedOps; i++ {
				key := rng.Intn(randomizedKeySpace)
				value := string(rune('a' + key%26))

				if rng.Intn(2) == 0 {
					err := tree.Insert(key, value)
					if _, exists := oracle[key]; exists {
						assert.ErrorIs(t, err, ErrDuplicateKey)
					} else {
						require.NoError(t, err)
						oracle[key] = value
					}
				} else {
					err := tree.Erase(key)
					if _, exists := oracle[key]; exists {
						require.NoError(t, err)
						delete(oracle, key)
					} else {
						assert.ErrorIs(t, err, ErrKeyNotFound)
					}
				}

				if i%500 == 0 {
					checkInvariants(t, tree)
				}
			}

			checkInvariants(t, tree)
			require.Equal(t, len(oracle), tree.Len())

			wantKeys := make([]int, 0, len(oracle))
			for k := range oracle {
				wantKeys = append(wantKeys, k)
			}

			slices.Sort(wantKeys)
			assert.Equal(t, wantKeys, collectKeys(tree))

			for k, v := range oracle {
				got, ok := tree.Find(k)
				require.True(t, ok, "key %d missing", k)
				assert.Equal(t, v, got)
			}
		})
	}
}
