// bench-trees measures the steady-state heap footprint of every
// fixed-capacity container and checks that a sustained churn phase
// performs no heap allocations after construction.
//
// Usage:
//
//	go run ./scripts/bench-trees --capacities 1024,65536 --ops 200000 \
//	  --profile-dir /tmp/estl-profiles --cpu-profile
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/snir-david/ESTL/internal/workload"
	"github.com/snir-david/ESTL/pkg/fixedhash"
	"github.com/snir-david/ESTL/pkg/fixedmap"
	"github.com/snir-david/ESTL/pkg/fixedtree"
	"github.com/snir-david/ESTL/pkg/safeconv"
)

var errNonPositiveCapacity = errors.New("capacity must be positive")

// store is the container surface the measurement loop needs.
type store interface {
	Insert(key, value uint32) error
	InsertOrAssign(key, value uint32) (bool, error)
	Erase(key uint32) error
	Get(key uint32) (uint32, bool)
	Extract(key uint32) (uint32, error)
	Clear()
	Cap() int
}

type target struct {
	name  string
	build func(capacity int) (store, error)
}

func targets() []target {
	return []target{
		{name: "tree/avl", build: func(capacity int) (store, error) {
			return fixedmap.New[uint32, uint32](capacity, fixedmap.WithStrategy(fixedtree.StrategyAVL))
		}},
		{name: "tree/redblack", build: func(capacity int) (store, error) {
			return fixedmap.New[uint32, uint32](capacity, fixedmap.WithStrategy(fixedtree.StrategyRedBlack))
		}},
		{name: "hash/chaining", build: func(capacity int) (store, error) {
			return fixedhash.New[uint32, uint32](capacity, fixedhash.WithProbing[uint32](fixedhash.Chaining))
		}},
		{name: "hash/linear", build: func(capacity int) (store, error) {
			return fixedhash.New[uint32, uint32](capacity, fixedhash.WithProbing[uint32](fixedhash.LinearProbing))
		}},
		{name: "hash/quadratic", build: func(capacity int) (store, error) {
			return fixedhash.New[uint32, uint32](capacity, fixedhash.WithProbing[uint32](fixedhash.QuadraticProbing))
		}},
	}
}

type measurement struct {
	name         string
	capacity     int
	footprint    uint64
	bytesPerSlot float64
	churnNsPerOp float64
	churnMallocs uint64
}

func main() {
	capacitiesArg := flag.String("capacities", "1024,65536", "Comma-separated container capacities to measure")
	ops := flag.Int("ops", 200000, "Churn operations per measurement")
	seed := flag.Int64("seed", 1, "Workload random seed")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles (empty = disabled)")
	cpuProfile := flag.Bool("cpu-profile", false, "Write CPU profile to profile-dir/cpu.prof")

	flag.Parse()

	capacities, err := parseCapacities(*capacitiesArg)
	if err != nil {
		log.Fatalf("parse capacities: %v", err)
	}

	if *profileDir != "" {
		if mkErr := os.MkdirAll(*profileDir, 0o755); mkErr != nil {
			log.Fatalf("mkdir profile-dir: %v", mkErr)
		}
	}

	if *cpuProfile {
		if *profileDir == "" {
			log.Fatal("--cpu-profile requires --profile-dir")
		}

		cpuPath := filepath.Join(*profileDir, "cpu.prof")

		cpuFile, cpuErr := os.Create(cpuPath)
		if cpuErr != nil {
			log.Fatalf("create cpu profile: %v", cpuErr)
		}
		defer cpuFile.Close()

		if startErr := pprof.StartCPUProfile(cpuFile); startErr != nil {
			log.Fatalf("start cpu profile: %v", startErr)
		}

		defer pprof.StopCPUProfile()

		log.Printf("CPU profiling enabled -> %s", cpuPath)
	}

	var results []measurement

	for _, capacity := range capacities {
		churn := workload.Generate(workload.ProfileChurn, *ops, safeconv.MustIntToUint32(capacity), *seed)

		for _, tg := range targets() {
			log.Printf("measuring %s at capacity %d", tg.name, capacity)

			m, runErr := measure(tg, capacity, churn)
			if runErr != nil {
				log.Fatalf("measure %s: %v", tg.name, runErr)
			}

			results = append(results, m)

			if *profileDir != "" {
				writeHeapProfile(*profileDir, fmt.Sprintf("heap_%s_%d.prof",
					strings.ReplaceAll(tg.name, "/", "_"), capacity))
			}
		}
	}

	printSummary(results)
}

// measure builds and fills one container, then drives the churn trace
// over it while watching the allocator counters.
func measure(tg target, capacity int, churn []workload.Op) (measurement, error) {
	settleHeap()

	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	s, err := tg.build(capacity)
	if err != nil {
		return measurement{}, err
	}

	for i := 0; i < capacity; i++ {
		insErr := s.Insert(uint32(i), uint32(i))
		if insErr != nil {
			return measurement{}, fmt.Errorf("fill insert %d: %w", i, insErr)
		}
	}

	settleHeap()

	var filled runtime.MemStats
	runtime.ReadMemStats(&filled)

	startedAt := time.Now()

	for _, op := range churn {
		applyOp(s, op)
	}

	elapsed := time.Since(startedAt)

	var postChurn runtime.MemStats
	runtime.ReadMemStats(&postChurn)

	footprint := filled.HeapInuse - before.HeapInuse
	if filled.HeapInuse < before.HeapInuse {
		footprint = 0
	}

	return measurement{
		name:         tg.name,
		capacity:     capacity,
		footprint:    footprint,
		bytesPerSlot: float64(footprint) / float64(capacity),
		churnNsPerOp: float64(elapsed.Nanoseconds()) / float64(len(churn)),
		churnMallocs: postChurn.Mallocs - filled.Mallocs,
	}, nil
}

func applyOp(s store, op workload.Op) {
	switch op.Kind {
	case workload.OpInsert:
		_ = s.Insert(op.Key, op.Value)
	case workload.OpInsertOrAssign:
		_, _ = s.InsertOrAssign(op.Key, op.Value)
	case workload.OpErase:
		_ = s.Erase(op.Key)
	case workload.OpGet:
		_, _ = s.Get(op.Key)
	case workload.OpExtract:
		_, _ = s.Extract(op.Key)
	case workload.OpClear:
		s.Clear()
	}
}

// settleHeap runs the collector twice so HeapInuse reflects live data.
func settleHeap() {
	runtime.GC()
	runtime.GC()
}

func writeHeapProfile(dir, name string) {
	settleHeap()

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		log.Printf("warning: create heap profile %s: %v", path, err)

		return
	}
	defer f.Close()

	if perr := pprof.WriteHeapProfile(f); perr != nil {
		log.Printf("warning: write heap profile %s: %v", path, perr)
	}
}

func printSummary(results []measurement) {
	fmt.Println()
	fmt.Println("=== Container Footprint and Churn ===")
	fmt.Printf("%-16s %10s %12s %12s %12s %10s\n",
		"Container", "Capacity", "Heap(MB)", "Bytes/Slot", "Churn ns/op", "Mallocs")
	fmt.Println("----------------+----------+------------+------------+------------+----------")

	for _, m := range results {
		fmt.Printf("%-16s %10d %12.2f %12.1f %12.1f %10d\n",
			m.name, m.capacity, float64(m.footprint)/1e6, m.bytesPerSlot, m.churnNsPerOp, m.churnMallocs)
	}

	fmt.Println()
	fmt.Println("Mallocs counts allocator hits during the churn phase; a steady-state")
	fmt.Println("container should stay at or near zero.")
}

func parseCapacities(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	out := make([]int, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("capacity %q: %w", trimmed, err)
		}

		if n < 1 {
			return nil, fmt.Errorf("capacity %d: %w", n, errNonPositiveCapacity)
		}

		out = append(out, n)
	}

	if len(out) == 0 {
		return nil, errors.New("no capacities given")
	}

	return out, nil
}
