package fixedtree

import (
	"cmp"
	"fmt"
	"strings"
)

// Strategy selects the balancing algorithm at construction time.
type Strategy uint8

// Available balancing strategies. Red-black is the default.
const (
	StrategyRedBlack Strategy = iota
	StrategyAVL
)

// String returns the canonical lowercase name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyRedBlack:
		return "redblack"
	case StrategyAVL:
		return "avl"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// ParseStrategy maps a user-facing name to its Strategy tag.
// ErrInvalidStrategy when the name is unknown.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "redblack", "red-black", "rb":
		return StrategyRedBlack, nil
	case "avl":
		return StrategyAVL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
	}
}

// Tree is the operation set both balancing strategies provide. Node
// indexes returned by the navigation methods are stable until the node is
// erased or the tree is cleared; index 0 means "no node".
type Tree[K, V any] interface {
	Insert(key K, value V) error
	Erase(key K) error
	Find(key K) (V, bool)
	FindNode(key K) uint32
	LowerBound(key K) uint32
	UpperBound(key K) uint32
	Min() uint32
	Max() uint32
	Next(n uint32) uint32
	Prev(n uint32) uint32
	KeyAt(n uint32) K
	ValueAt(n uint32) V
	SetValueAt(n uint32, value V)
	Len() int
	Cap() int
	Clear()
	Height() int
	Strategy() Strategy
}

// New builds a tree over an ordered key type using cmp.Compare.
// ErrInvalidStrategy for an unknown strategy; a non-positive capacity
// panics, matching the construction contract of the arena.
func New[K cmp.Ordered, V any](strategy Strategy, capacity int) (Tree[K, V], error) {
	return NewFunc[K, V](strategy, capacity, cmp.Compare[K])
}

// NewFunc builds a tree with a caller-supplied comparator. compare must
// define a total order: negative when a sorts before b, zero when equal.
func NewFunc[K, V any](strategy Strategy, capacity int, compare func(a, b K) int) (Tree[K, V], error) {
	if compare == nil {
		panic("fixedtree: compare must not be nil")
	}

	base := core[K, V]{arena: newArena[K, V](capacity), compare: compare}

	switch strategy {
	case StrategyRedBlack:
		return &RedBlack[K, V]{core: base}, nil
	case StrategyAVL:
		return &AVL[K, V]{core: base}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStrategy, strategy)
	}
}
