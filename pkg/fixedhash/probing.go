package fixedhash

import (
	"fmt"
	"strings"
)

// Probing selects how the table resolves hash collisions.
type Probing uint8

const (
	// Chaining links colliding entries into per-bucket lists drawn from a
	// shared node pool. The default: stable under any load and erase
	// pattern.
	Chaining Probing = iota

	// LinearProbing stores entries in the bucket array itself and scans
	// forward one slot at a time. Cache-friendly; clusters under load.
	LinearProbing

	// QuadraticProbing scans with triangular-number strides, which visit
	// every slot of a power-of-two table exactly once and break up the
	// clusters linear probing builds.
	QuadraticProbing
)

// String returns the parseable name of the policy.
func (p Probing) String() string {
	switch p {
	case Chaining:
		return "chaining"
	case LinearProbing:
		return "linear"
	case QuadraticProbing:
		return "quadratic"
	default:
		return fmt.Sprintf("probing(%d)", uint8(p))
	}
}

// ParseProbing maps a policy name to its Probing value. Matching is
// case-insensitive and tolerates surrounding whitespace.
func ParseProbing(s string) (Probing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chaining", "chain":
		return Chaining, nil
	case "linear", "linear-probing":
		return LinearProbing, nil
	case "quadratic", "quadratic-probing":
		return QuadraticProbing, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidProbing, s)
	}
}
