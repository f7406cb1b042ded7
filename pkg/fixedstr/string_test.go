package fixedstr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringAppendUntilFull(t *testing.T) {
	t.Parallel()

	s := New(8)

	require.NoError(t, s.Append("hello"))
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 8, s.Cap())

	assert.ErrorIs(t, s.Append("world"), ErrCapacityExhausted)
	assert.Equal(t, "hello", s.String())

	require.NoError(t, s.Append("go!"))
	assert.True(t, s.Full())

	assert.ErrorIs(t, s.AppendByte('x'), ErrCapacityExhausted)
}

func TestStringNewFrom(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(8, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seed", s.String())

	_, err = NewFrom(2, "too long")
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}

func TestStringAtAndSet(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(4, "abc")
	require.NoError(t, err)

	b, err := s.At(1)
	require.NoError(t, err)
	assert.Equal(t, byte('b'), b)

	require.NoError(t, s.Set(1, 'B'))
	assert.Equal(t, "aBc", s.String())

	_, err = s.At(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, s.Set(-1, 'x'), ErrOutOfRange)
}

func TestStringPopByteZeroesVacatedSlot(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(4, "ab")
	require.NoError(t, err)

	b, err := s.PopByte()
	require.NoError(t, err)
	assert.Equal(t, byte('b'), b)
	assert.Equal(t, "a", s.String())
	assert.Equal(t, byte(0), s.buf[:2][1])

	_, err = s.PopByte()
	require.NoError(t, err)
	_, err = s.PopByte()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestStringInsert(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(16, "held")
	require.NoError(t, err)

	require.NoError(t, s.Insert(3, " wor"))
	assert.Equal(t, "hel word", s.String())

	require.NoError(t, s.Insert(0, ">"))
	assert.Equal(t, ">hel word", s.String())

	require.NoError(t, s.Insert(s.Len(), "<"))
	assert.Equal(t, ">hel word<", s.String())

	assert.ErrorIs(t, s.Insert(99, "x"), ErrOutOfRange)
	assert.ErrorIs(t, s.Insert(0, "this will not fit at all"), ErrCapacityExhausted)
}

func TestStringEraseRange(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(16, "hello world")
	require.NoError(t, err)

	require.NoError(t, s.EraseRange(5, 6))
	assert.Equal(t, "hello", s.String())

	require.NoError(t, s.EraseRange(0, 1))
	assert.Equal(t, "ello", s.String())

	assert.ErrorIs(t, s.EraseRange(2, 10), ErrOutOfRange)
	assert.ErrorIs(t, s.EraseRange(-1, 1), ErrOutOfRange)
	assert.Equal(t, "ello", s.String())
}

func TestStringReplace(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(16, "hello world")
	require.NoError(t, err)

	require.NoError(t, s.Replace(6, 5, "there"))
	assert.Equal(t, "hello there", s.String())

	// Shrinking replacement.
	require.NoError(t, s.Replace(5, 6, "!"))
	assert.Equal(t, "hello!", s.String())

	// Growing replacement within capacity.
	require.NoError(t, s.Replace(5, 1, " again!"))
	assert.Equal(t, "hello again!", s.String())

	assert.ErrorIs(t, s.Replace(0, 1, "far far too long to fit"), ErrCapacityExhausted)
	assert.Equal(t, "hello again!", s.String())
}

func TestStringSearch(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(32, "the quick brown fox the end")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Find("the"))
	assert.Equal(t, 20, s.RFind("the"))
	assert.Equal(t, -1, s.Find("missing"))

	assert.True(t, s.Contains("quick"))
	assert.False(t, s.Contains("slow"))

	assert.True(t, s.StartsWith("the q"))
	assert.True(t, s.EndsWith("end"))
	assert.False(t, s.StartsWith("quick"))
}

func TestStringCompare(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(8, "bbb")
	require.NoError(t, err)

	assert.True(t, s.Equal("bbb"))
	assert.False(t, s.Equal("bb"))

	assert.Equal(t, 0, s.Compare("bbb"))
	assert.Equal(t, -1, s.Compare("bbc"))
	assert.Equal(t, 1, s.Compare("bba"))
}

func TestStringTruncateAndClear(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(8, "abcdef")
	require.NoError(t, err)

	require.NoError(t, s.TruncateTo(3))
	assert.Equal(t, "abc", s.String())
	assert.ErrorIs(t, s.TruncateTo(4), ErrOutOfRange)

	s.Clear()
	assert.True(t, s.Empty())
	assert.Equal(t, 8, s.Cap())
	require.NoError(t, s.Append("reusable"))
	assert.True(t, s.Full())
}

func TestStringAll(t *testing.T) {
	t.Parallel()

	s, err := NewFrom(4, "abc")
	require.NoError(t, err)

	got := make([]byte, 0, 3)
	for _, b := range s.All() {
		got = append(got, b)
	}

	assert.Equal(t, []byte("abc"), got)
}

func TestStringRandomizedAgainstString(t *testing.T) {
	t.Parallel()

	const (
		capacity = 32
		rounds   = 5000
		seed     = 13
		alphabet = "abcdefgh"
	)

	s := New(capacity)
	mirror := ""
	rng := rand.New(rand.NewSource(seed))

	chunk := func() string {
		n := 1 + rng.Intn(3)

		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}

		return string(b)
	}

	for i := 0; i < rounds; i++ {
		switch rng.Intn(4) {
		case 0:
			str := chunk()

			err := s.Append(str)
			if len(mirror)+len(str) > capacity {
				assert.ErrorIs(t, err, ErrCapacityExhausted)
			} else {
				require.NoError(t, err)

				mirror += str
			}
		case 1:
			at := rng.Intn(capacity + 1)
			str := chunk()

			err := s.Insert(at, str)

			switch {
			case at > len(mirror):
				assert.ErrorIs(t, err, ErrOutOfRange)
			case len(mirror)+len(str) > capacity:
				assert.ErrorIs(t, err, ErrCapacityExhausted)
			default:
				require.NoError(t, err)

				mirror = mirror[:at] + str + mirror[at:]
			}
		case 2:
			at := rng.Intn(capacity)
			n := rng.Intn(4)

			err := s.EraseRange(at, n)
			if at+n > len(mirror) {
				assert.ErrorIs(t, err, ErrOutOfRange)
			} else {
				require.NoError(t, err)

				mirror = mirror[:at] + mirror[at+n:]
			}
		default:
			got, err := s.PopByte()
			if len(mirror) == 0 {
				assert.ErrorIs(t, err, ErrOutOfRange)
			} else {
				require.NoError(t, err)
				assert.Equal(t, mirror[len(mirror)-1], got)

				mirror = mirror[:len(mirror)-1]
			}
		}

		require.Equal(t, len(mirror), s.Len())
	}

	assert.Equal(t, mirror, s.String())
}

func TestStringPanicsOnNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "fixedstr: capacity must be positive", func() {
		New(0)
	})
}
