// Package fixedstr provides a fixed-capacity mutable byte string. The
// backing buffer is allocated once at construction; every edit that would
// outgrow it fails with ErrCapacityExhausted instead of reallocating.
package fixedstr

import (
	"bytes"
	"errors"
	"iter"
)

// Sentinel errors reported by string operations.
var (
	ErrCapacityExhausted = errors.New("capacity exhausted")
	ErrOutOfRange        = errors.New("index out of range")
)

// String is a fixed-capacity byte string. Not safe for concurrent use.
type String struct {
	buf []byte
}

// New builds an empty string with the given fixed capacity. Panics when
// capacity is not positive.
func New(capacity int) *String {
	if capacity < 1 {
		panic("fixedstr: capacity must be positive")
	}

	return &String{buf: make([]byte, 0, capacity)}
}

// NewFrom builds a string holding s. Panics when capacity is not positive;
// fails when s does not fit.
func NewFrom(capacity int, s string) (*String, error) {
	fs := New(capacity)
	if err := fs.Append(s); err != nil {
		return nil, err
	}

	return fs, nil
}

// Len returns the current length in bytes.
func (s *String) Len() int { return len(s.buf) }

// Cap returns the fixed capacity chosen at construction.
func (s *String) Cap() int { return cap(s.buf) }

// Empty reports whether the string is empty.
func (s *String) Empty() bool { return len(s.buf) == 0 }

// Full reports whether the string is at capacity.
func (s *String) Full() bool { return len(s.buf) == cap(s.buf) }

// Clear truncates the string to zero length. Capacity is retained.
func (s *String) Clear() {
	clear(s.buf[:cap(s.buf)])
	s.buf = s.buf[:0]
}

// String returns a copy of the contents.
func (s *String) String() string { return string(s.buf) }

// Bytes returns the live backing slice. The view aliases internal storage
// and is invalidated by any subsequent edit.
func (s *String) Bytes() []byte { return s.buf }

// At returns the byte at index i.
func (s *String) At(i int) (byte, error) {
	if i < 0 || i >= len(s.buf) {
		return 0, ErrOutOfRange
	}

	return s.buf[i], nil
}

// Set overwrites the byte at index i.
func (s *String) Set(i int, b byte) error {
	if i < 0 || i >= len(s.buf) {
		return ErrOutOfRange
	}

	s.buf[i] = b

	return nil
}

// Append adds str to the end.
func (s *String) Append(str string) error {
	if len(s.buf)+len(str) > cap(s.buf) {
		return ErrCapacityExhausted
	}

	s.buf = append(s.buf, str...)

	return nil
}

// AppendByte adds a single byte to the end.
func (s *String) AppendByte(b byte) error {
	if len(s.buf) == cap(s.buf) {
		return ErrCapacityExhausted
	}

	s.buf = append(s.buf, b)

	return nil
}

// PopByte removes and returns the last byte.
func (s *String) PopByte() (byte, error) {
	if len(s.buf) == 0 {
		return 0, ErrOutOfRange
	}

	last := len(s.buf) - 1
	b := s.buf[last]
	s.buf[last] = 0
	s.buf = s.buf[:last]

	return b, nil
}

// Insert places str at index i, shifting the tail right. i may equal Len,
// which appends.
func (s *String) Insert(i int, str string) error {
	if i < 0 || i > len(s.buf) {
		return ErrOutOfRange
	}

	if len(s.buf)+len(str) > cap(s.buf) {
		return ErrCapacityExhausted
	}

	old := len(s.buf)
	s.buf = s.buf[:old+len(str)]
	copy(s.buf[i+len(str):], s.buf[i:old])
	copy(s.buf[i:], str)

	return nil
}

// EraseRange removes n bytes starting at index i, shifting the tail left.
func (s *String) EraseRange(i, n int) error {
	if n < 0 || i < 0 || i+n > len(s.buf) {
		return ErrOutOfRange
	}

	tail := copy(s.buf[i:], s.buf[i+n:])
	clear(s.buf[i+tail:])
	s.buf = s.buf[:i+tail]

	return nil
}

// Replace substitutes the n bytes at index i with str. The string may
// grow or shrink as long as the result fits.
func (s *String) Replace(i, n int, str string) error {
	if n < 0 || i < 0 || i+n > len(s.buf) {
		return ErrOutOfRange
	}

	if len(s.buf)-n+len(str) > cap(s.buf) {
		return ErrCapacityExhausted
	}

	if err := s.EraseRange(i, n); err != nil {
		return err
	}

	return s.Insert(i, str)
}

// TruncateTo shortens the string to n bytes.
func (s *String) TruncateTo(n int) error {
	if n < 0 || n > len(s.buf) {
		return ErrOutOfRange
	}

	clear(s.buf[n:])
	s.buf = s.buf[:n]

	return nil
}

// Find returns the index of the first occurrence of sub, or -1.
func (s *String) Find(sub string) int {
	return bytes.Index(s.buf, []byte(sub))
}

// RFind returns the index of the last occurrence of sub, or -1.
func (s *String) RFind(sub string) int {
	return bytes.LastIndex(s.buf, []byte(sub))
}

// Contains reports whether sub occurs in the string.
func (s *String) Contains(sub string) bool {
	return s.Find(sub) >= 0
}

// StartsWith reports whether the string begins with prefix.
func (s *String) StartsWith(prefix string) bool {
	return bytes.HasPrefix(s.buf, []byte(prefix))
}

// EndsWith reports whether the string ends with suffix.
func (s *String) EndsWith(suffix string) bool {
	return bytes.HasSuffix(s.buf, []byte(suffix))
}

// Equal reports whether the contents match str.
func (s *String) Equal(str string) bool {
	return string(s.buf) == str
}

// Compare orders the contents against str like bytes.Compare.
func (s *String) Compare(str string) int {
	return bytes.Compare(s.buf, []byte(str))
}

// All returns an index and byte iterator over the contents.
func (s *String) All() iter.Seq2[int, byte] {
	return func(yield func(int, byte) bool) {
		for i, b := range s.buf {
			if !yield(i, b) {
				return
			}
		}
	}
}
