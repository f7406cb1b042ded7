package fixedtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arenaTestCapacity = 4

func TestArenaAcquireUntilExhausted(t *testing.T) {
	a := newArena[int, string](arenaTestCapacity)

	seen := make(map[uint32]bool)

	for i := 0; i < arenaTestCapacity; i++ {
		n, err := a.acquire(i, "v")
		require.NoError(t, err)
		require.NotZero(t, n, "index 0 is the sentinel and must never be handed out")

		assert.False(t, seen[n], "slot %d handed out twice", n)
		seen[n] = true
	}

	assert.Equal(t, arenaTestCapacity, a.len())

	_, err := a.acquire(99, "v")
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}

func TestArenaReleaseIsLIFO(t *testing.T) {
	a := newArena[int, int](arenaTestCapacity)

	n1, err := a.acquire(1, 1)
	require.NoError(t, err)

	n2, err := a.acquire(2, 2)
	require.NoError(t, err)

	a.release(n2)
	a.release(n1)

	// Most recently released slot comes back first.
	got, err := a.acquire(3, 3)
	require.NoError(t, err)
	assert.Equal(t, n1, got)

	got, err = a.acquire(4, 4)
	require.NoError(t, err)
	assert.Equal(t, n2, got)
}

func TestArenaReleaseZeroesSlot(t *testing.T) {
	a := newArena[string, []byte](arenaTestCapacity)

	n, err := a.acquire("key", []byte("payload"))
	require.NoError(t, err)

	// Simulate strategy state so the reset is observable.
	a.nodes[n].tag = 7
	a.nodes[n].parent = 3
	a.nodes[n].left = 2

	a.release(n)

	slot := a.nodes[n]
	assert.Empty(t, slot.key)
	assert.Nil(t, slot.value, "released value must not pin its backing array")
	assert.Zero(t, slot.tag, "stale balance tag must not survive release")
	assert.Zero(t, slot.parent)
	assert.Zero(t, slot.left)
	assert.False(t, slot.used)
}

func TestArenaAcquireResetsReusedSlot(t *testing.T) {
	a := newArena[int, int](1)

	n, err := a.acquire(1, 10)
	require.NoError(t, err)

	a.nodes[n].tag = 5
	a.release(n)

	n2, err := a.acquire(2, 20)
	require.NoError(t, err)
	require.Equal(t, n, n2)

	assert.Zero(t, a.nodes[n2].tag)
	assert.Zero(t, a.nodes[n2].left)
	assert.Zero(t, a.nodes[n2].right)
	assert.True(t, a.nodes[n2].used)
}

func TestArenaResetRestoresFullCapacity(t *testing.T) {
	a := newArena[int, int](arenaTestCapacity)

	for i := 0; i < arenaTestCapacity; i++ {
		_, err := a.acquire(i, i)
		require.NoError(t, err)
	}

	a.reset()

	assert.Zero(t, a.len())
	assert.Equal(t, arenaTestCapacity, a.cap())

	for i := 0; i < arenaTestCapacity; i++ {
		_, err := a.acquire(i, i)
		require.NoError(t, err)
	}
}

func TestArenaInvariantFreePlusLiveIsCapacity(t *testing.T) {
	a := newArena[int, int](arenaTestCapacity)

	countFree := func() int {
		total := 0
		for n := a.free; n != 0; n = a.nodes[n].right {
			total++
		}

		return total
	}

	require.Equal(t, arenaTestCapacity, countFree())

	n1, _ := a.acquire(1, 1)
	n2, _ := a.acquire(2, 2)

	assert.Equal(t, arenaTestCapacity, countFree()+a.len())

	a.release(n1)
	assert.Equal(t, arenaTestCapacity, countFree()+a.len())

	a.release(n2)
	assert.Equal(t, arenaTestCapacity, countFree()+a.len())
}

func TestArenaPanicsOnNonPositiveCapacity(t *testing.T) {
	assert.PanicsWithValue(t, "fixedtree: capacity must be positive", func() {
		newArena[int, int](0)
	})
}

func TestArenaPanicsOnDoubleRelease(t *testing.T) {
	a := newArena[int, int](2)

	n, err := a.acquire(1, 1)
	require.NoError(t, err)

	a.release(n)

	assert.Panics(t, func() { a.release(n) })
}
