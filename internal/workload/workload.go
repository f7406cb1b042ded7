// Package workload generates deterministic operation traces for exercising
// the fixed-capacity containers, and serializes them in a compact columnar
// format so long soak runs can be recorded and replayed bit for bit.
package workload

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// OpKind identifies one container operation in a trace.
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpInsertOrAssign
	OpErase
	OpGet
	OpExtract
	OpClear

	opKindCount
)

// String returns the operation name used in reports and logs.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpInsertOrAssign:
		return "insert_or_assign"
	case OpErase:
		return "erase"
	case OpGet:
		return "get"
	case OpExtract:
		return "extract"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("op(%d)", uint8(k))
	}
}

// Kinds lists every operation kind in wire order, for per-kind reporting.
func Kinds() []OpKind {
	out := make([]OpKind, 0, opKindCount)
	for k := OpKind(0); k < opKindCount; k++ {
		out = append(out, k)
	}

	return out
}

// Op is a single replayable container operation. Clear carries no key or
// value; Get, Erase, and Extract carry only a key.
type Op struct {
	Kind  OpKind
	Key   uint32
	Value uint32
}

// Profile shapes the operation mix of a generated trace.
type Profile uint8

const (
	// ProfileMixed balances reads and writes with occasional clears.
	ProfileMixed Profile = iota

	// ProfileInsertHeavy fills capacity fast, stressing rejection paths.
	ProfileInsertHeavy

	// ProfileReadHeavy is mostly lookups over a slowly changing keyset.
	ProfileReadHeavy

	// ProfileChurn pairs inserts with erases, recycling slots constantly.
	ProfileChurn

	profileCount
)

// ErrUnknownProfile is returned when a profile name does not parse.
var ErrUnknownProfile = errors.New("unknown workload profile")

// String returns the parseable name of the profile.
func (p Profile) String() string {
	switch p {
	case ProfileMixed:
		return "mixed"
	case ProfileInsertHeavy:
		return "insert-heavy"
	case ProfileReadHeavy:
		return "read-heavy"
	case ProfileChurn:
		return "churn"
	default:
		return fmt.Sprintf("profile(%d)", uint8(p))
	}
}

// ParseProfile maps a profile name to its Profile value. Matching is
// case-insensitive and tolerates surrounding whitespace.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mixed":
		return ProfileMixed, nil
	case "insert-heavy", "insert":
		return ProfileInsertHeavy, nil
	case "read-heavy", "read":
		return ProfileReadHeavy, nil
	case "churn":
		return ProfileChurn, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, s)
	}
}

// Profiles lists every known profile, for CLI help text.
func Profiles() []Profile {
	out := make([]Profile, 0, profileCount)
	for p := Profile(0); p < profileCount; p++ {
		out = append(out, p)
	}

	return out
}

// profileWeights holds the per-kind pick weights of each profile, indexed
// by Profile then OpKind.
var profileWeights = [profileCount][opKindCount]int{
	ProfileMixed:       {30, 15, 20, 25, 8, 2},
	ProfileInsertHeavy: {70, 10, 5, 13, 2, 0},
	ProfileReadHeavy:   {10, 5, 5, 75, 5, 0},
	ProfileChurn:       {40, 0, 40, 15, 4, 1},
}

// Generate produces n operations drawn from the profile's mix, with keys
// uniform over [0, keySpace). The same seed always yields the same trace.
// Panics when n is negative, keySpace is zero, or the profile is unknown.
func Generate(profile Profile, n int, keySpace uint32, seed int64) []Op {
	if n < 0 {
		panic("workload: operation count must not be negative")
	}

	if keySpace == 0 {
		panic("workload: key space must not be empty")
	}

	if profile >= profileCount {
		panic("workload: unknown profile")
	}

	weights := profileWeights[profile]

	total := 0
	for _, w := range weights {
		total += w
	}

	rng := rand.New(rand.NewSource(seed))
	ops := make([]Op, 0, n)

	for i := 0; i < n; i++ {
		kind := pickKind(rng, weights, total)
		op := Op{Kind: kind}

		if kind != OpClear {
			op.Key = uint32(rng.Intn(int(keySpace)))
		}

		if kind == OpInsert || kind == OpInsertOrAssign {
			op.Value = rng.Uint32()
		}

		ops = append(ops, op)
	}

	return ops
}

func pickKind(rng *rand.Rand, weights [opKindCount]int, total int) OpKind {
	roll := rng.Intn(total)

	for kind, w := range weights {
		if roll < w {
			return OpKind(kind)
		}

		roll -= w
	}

	return OpInsert
}
