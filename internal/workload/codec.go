package workload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Traces are stored columnar: a fixed header, then one framed block per
// column (kinds, keys, values). Splitting the columns groups similar bytes
// together, and keys are delta-encoded first so the monotonic runs common
// in insert-heavy traces collapse into tiny repeated values. Each block
// compresses with LZ4 unless that would not shrink it, in which case the
// block is stored raw and the equal lengths in the frame say so.

const (
	traceMagic   = uint32(0x4C545345)
	traceVersion = uint32(1)

	uint32ByteSize = 4
)

// ErrMalformedTrace is returned when a trace fails structural validation.
var ErrMalformedTrace = errors.New("malformed trace")

type traceHeader struct {
	Magic   uint32
	Version uint32
	Count   uint32
}

// Write serializes ops to w.
func Write(w io.Writer, ops []Op) error {
	header := traceHeader{
		Magic:   traceMagic,
		Version: traceVersion,
		Count:   uint32(len(ops)),
	}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write trace header: %w", err)
	}

	kinds := make([]byte, len(ops))
	keys := make([]uint32, len(ops))
	values := make([]uint32, len(ops))

	for i, op := range ops {
		kinds[i] = byte(op.Kind)
		keys[i] = op.Key
		values[i] = op.Value
	}

	deltaEncode(keys)

	if err := writeBlock(w, kinds); err != nil {
		return fmt.Errorf("write kind column: %w", err)
	}

	if err := writeBlock(w, uint32sToBytes(keys)); err != nil {
		return fmt.Errorf("write key column: %w", err)
	}

	if err := writeBlock(w, uint32sToBytes(values)); err != nil {
		return fmt.Errorf("write value column: %w", err)
	}

	return nil
}

// Read deserializes a trace from r.
func Read(r io.Reader) ([]Op, error) {
	var header traceHeader

	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read trace header: %w", err)
	}

	if header.Magic != traceMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrMalformedTrace, header.Magic)
	}

	if header.Version != traceVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedTrace, header.Version)
	}

	count := int(header.Count)

	kinds, err := readBlock(r, count)
	if err != nil {
		return nil, fmt.Errorf("read kind column: %w", err)
	}

	keyBytes, err := readBlock(r, count*uint32ByteSize)
	if err != nil {
		return nil, fmt.Errorf("read key column: %w", err)
	}

	valueBytes, err := readBlock(r, count*uint32ByteSize)
	if err != nil {
		return nil, fmt.Errorf("read value column: %w", err)
	}

	keys := bytesToUint32s(keyBytes)
	values := bytesToUint32s(valueBytes)

	deltaDecode(keys)

	ops := make([]Op, count)

	for i := range ops {
		if kinds[i] >= byte(opKindCount) {
			return nil, fmt.Errorf("%w: unknown op kind %d at %d", ErrMalformedTrace, kinds[i], i)
		}

		ops[i] = Op{Kind: OpKind(kinds[i]), Key: keys[i], Value: values[i]}
	}

	return ops, nil
}

// writeBlock frames raw as [rawLen][storedLen][bytes], compressing with
// LZ4 when that shrinks the block.
func writeBlock(w io.Writer, raw []byte) error {
	stored := raw

	if len(raw) > 0 {
		compressed := make([]byte, lz4.CompressBlockBound(len(raw)))

		written, err := lz4.CompressBlock(raw, compressed, nil)
		if err != nil {
			return fmt.Errorf("compress block: %w", err)
		}

		// written == 0 means incompressible; keep the raw bytes.
		if written > 0 && written < len(raw) {
			stored = compressed[:written]
		}
	}

	lens := [2]uint32{uint32(len(raw)), uint32(len(stored))}
	if err := binary.Write(w, binary.LittleEndian, lens); err != nil {
		return fmt.Errorf("write block frame: %w", err)
	}

	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("write block body: %w", err)
	}

	return nil
}

// readBlock reads one framed block and returns its raw bytes, enforcing
// that the frame matches the expected column size.
func readBlock(r io.Reader, wantLen int) ([]byte, error) {
	var lens [2]uint32

	if err := binary.Read(r, binary.LittleEndian, &lens); err != nil {
		return nil, fmt.Errorf("read block frame: %w", err)
	}

	rawLen, storedLen := int(lens[0]), int(lens[1])

	if rawLen != wantLen {
		return nil, fmt.Errorf("%w: block holds %d bytes, want %d", ErrMalformedTrace, rawLen, wantLen)
	}

	if storedLen > rawLen {
		return nil, fmt.Errorf("%w: stored block larger than raw", ErrMalformedTrace)
	}

	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("read block body: %w", err)
	}

	if storedLen == rawLen {
		return stored, nil
	}

	raw := make([]byte, rawLen)

	if _, err := lz4.UncompressBlock(stored, raw); err != nil {
		return nil, fmt.Errorf("decompress block: %w", err)
	}

	return raw, nil
}

// deltaEncode replaces each element with the difference from its
// predecessor, in place. Sorted runs become small repetitive values that
// compress far better.
func deltaEncode(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// deltaDecode restores original values with a prefix sum, in place.
func deltaDecode(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}

func uint32sToBytes(data []uint32) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(data) * uint32ByteSize)

	// Writing []uint32 to a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, data)

	return buf.Bytes()
}

func bytesToUint32s(raw []byte) []uint32 {
	data := make([]uint32, len(raw)/uint32ByteSize)

	_ = binary.Read(bytes.NewReader(raw), binary.LittleEndian, data)

	return data
}
