package fixedmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededMap(t *testing.T) *Map[int, string] {
	t.Helper()

	m := newTestMap(t, mapTestCapacity)

	for _, k := range []int{20, 10, 30} {
		require.NoError(t, m.Insert(k, "v"))
	}

	return m
}

func TestIteratorForwardWalk(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	var keys []int

	for it := m.Begin(); it.Valid(); it = it.Next() {
		k, _, err := it.Entry()
		require.NoError(t, err)

		keys = append(keys, k)
	}

	assert.Equal(t, []int{10, 20, 30}, keys)
}

func TestIteratorBackwardWalk(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	var keys []int

	for it := m.End().Prev(); it.Valid(); it = it.Prev() {
		k, _, err := it.Entry()
		require.NoError(t, err)

		keys = append(keys, k)
	}

	assert.Equal(t, []int{30, 20, 10}, keys)
}

func TestIteratorEndDereferenceFails(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	_, _, err := m.End().Entry()
	assert.ErrorIs(t, err, ErrInvalidIteratorDereference)

	// The reverse end fails the same way.
	rend := m.Begin().Prev()
	assert.False(t, rend.Valid())

	_, _, err = rend.Entry()
	assert.ErrorIs(t, err, ErrInvalidIteratorDereference)
}

func TestIteratorClampsAtBoundaries(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	end := m.End()
	assert.Equal(t, end, end.Next(), "advancing End must stay at End")

	rend := m.Begin().Prev()
	assert.Equal(t, rend, rend.Prev(), "backing off the reverse end must stay there")

	// Boundaries re-enter the sequence from their own side.
	first, _, err := rend.Next().Entry()
	require.NoError(t, err)
	assert.Equal(t, 10, first)

	last, _, err := end.Prev().Entry()
	require.NoError(t, err)
	assert.Equal(t, 30, last)
}

func TestIteratorOnEmptyMap(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, 4)

	assert.False(t, m.Begin().Valid())

	_, _, err := m.Begin().Entry()
	assert.ErrorIs(t, err, ErrInvalidIteratorDereference)

	// Prev from End on an empty map has nowhere to land.
	assert.False(t, m.End().Prev().Valid())
}

func TestIteratorFind(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	it := m.FindIter(20)
	require.True(t, it.Valid())

	k, _, err := it.Entry()
	require.NoError(t, err)
	assert.Equal(t, 20, k)

	assert.False(t, m.FindIter(99).Valid(), "a miss lands on End")
}

func TestIteratorSurvivesUnrelatedErase(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	it := m.FindIter(30)
	require.True(t, it.Valid())

	require.NoError(t, m.Erase(10))

	k, _, err := it.Entry()
	require.NoError(t, err)
	assert.Equal(t, 30, k)
}

func TestAllYieldsAscendingOrder(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	var keys []int

	for k, v := range m.All() {
		assert.Equal(t, "v", v)

		keys = append(keys, k)
	}

	assert.Equal(t, []int{10, 20, 30}, keys)
}

func TestAllEarlyBreak(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	count := 0
	for range m.All() {
		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)

	// The map stays usable: the lock was not leaked by the break.
	require.NoError(t, m.Insert(40, "v"))
}

func TestAllToleratesMutationMidWalk(t *testing.T) {
	t.Parallel()

	m := seededMap(t)

	var keys []int

	for k := range m.All() {
		keys = append(keys, k)

		if k == 10 {
			// Erasing the current key must not derail the walk; it
			// resumes at the successor of the last yielded key.
			require.NoError(t, m.Erase(10))
		}
	}

	assert.Equal(t, []int{10, 20, 30}, keys)
}

func TestKeysAndValues(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, 8)

	require.NoError(t, m.Insert(2, "b"))
	require.NoError(t, m.Insert(1, "a"))

	var keys []int
	for k := range m.Keys() {
		keys = append(keys, k)
	}

	var values []string
	for v := range m.Values() {
		values = append(values, v)
	}

	assert.Equal(t, []int{1, 2}, keys)
	assert.Equal(t, []string{"a", "b"}, values)
}
