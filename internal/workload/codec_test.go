package workload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snir-david/ESTL/internal/workload"
)

// opWireSize is the per-op footprint of the three uncompressed columns.
const opWireSize = 9

func TestTraceRoundTrip(t *testing.T) {
	t.Parallel()

	ops := workload.Generate(workload.ProfileMixed, 5000, 512, 7)

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, ops))

	got, err := workload.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestTraceRoundTripEmpty(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, nil))

	got, err := workload.Read(buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Monotonic inserts are the best case for the delta and compression
// stages; the trace should land well under its uncompressed size.
func TestTraceCompressesMonotonicInserts(t *testing.T) {
	t.Parallel()

	const count = 4000

	ops := make([]workload.Op, count)
	for i := range ops {
		ops[i] = workload.Op{Kind: workload.OpInsert, Key: uint32(i), Value: 7}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, ops))

	assert.Less(t, buf.Len(), count*opWireSize/4)

	got, err := workload.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

// A tiny trace of arbitrary values gives LZ4 nothing to match, forcing
// the raw-block path through the frame.
func TestTraceRoundTripIncompressible(t *testing.T) {
	t.Parallel()

	ops := []workload.Op{
		{Kind: workload.OpInsert, Key: 0xDEADBEEF, Value: 0x12345678},
		{Kind: workload.OpGet, Key: 0x9ABCDEF0},
		{Kind: workload.OpErase, Key: 0x0F1E2D3C},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, ops))

	got, err := workload.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestReadRejectsBadMagic(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, []workload.Op{{Kind: workload.OpClear}}))

	raw := buf.Bytes()
	raw[0] ^= 0xFF

	_, err := workload.Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, workload.ErrMalformedTrace)
}

func TestReadRejectsUnsupportedVersion(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, []workload.Op{{Kind: workload.OpClear}}))

	raw := buf.Bytes()
	raw[4] = 0xFF

	_, err := workload.Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, workload.ErrMalformedTrace)
}

func TestReadRejectsUnknownOpKind(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, []workload.Op{{Kind: workload.OpKind(42)}}))

	_, err := workload.Read(buf)
	assert.ErrorIs(t, err, workload.ErrMalformedTrace)
}

func TestReadRejectsTruncatedTrace(t *testing.T) {
	t.Parallel()

	ops := workload.Generate(workload.ProfileMixed, 100, 64, 1)

	buf := new(bytes.Buffer)
	require.NoError(t, workload.Write(buf, ops))

	raw := buf.Bytes()

	_, err := workload.Read(bytes.NewReader(raw[:len(raw)-5]))
	assert.Error(t, err)

	_, err = workload.Read(bytes.NewReader(raw[:8]))
	assert.Error(t, err)
}
