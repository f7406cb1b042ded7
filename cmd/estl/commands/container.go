package commands

import (
	"github.com/snir-david/ESTL/internal/config"
	"github.com/snir-david/ESTL/pkg/fixedmap"
	"github.com/snir-david/ESTL/pkg/fixedtree"
)

// container is the operation surface the soak and bench loops drive. The
// ordered map, its sharded wrapper, and the hash maps all satisfy it.
type container interface {
	Insert(key, value uint32) error
	InsertOrAssign(key, value uint32) (bool, error)
	Erase(key uint32) error
	Get(key uint32) (uint32, bool)
	Extract(key uint32) (uint32, error)
	Clear()
	Len() int
	Cap() int
}

// statsProvider is satisfied by containers that keep operation counters.
type statsProvider interface {
	Stats() fixedmap.Stats
}

// buildContainer constructs the ordered map described by cc. Shard counts
// above one pick the sharded variant, which trades global ordering for one
// lock per shard.
func buildContainer(cc config.ContainerConfig) (container, error) {
	strategy, err := fixedtree.ParseStrategy(cc.Strategy)
	if err != nil {
		return nil, err
	}

	if cc.Shards > 1 {
		return fixedmap.NewSharded[uint32, uint32](cc.Shards, cc.Capacity, fixedmap.WithStrategy(strategy))
	}

	return fixedmap.New[uint32, uint32](cc.Capacity, fixedmap.WithStrategy(strategy))
}
