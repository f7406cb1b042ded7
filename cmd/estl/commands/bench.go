package commands

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/snir-david/ESTL/internal/config"
	"github.com/snir-david/ESTL/internal/workload"
	"github.com/snir-david/ESTL/pkg/fixedhash"
	"github.com/snir-david/ESTL/pkg/fixedmap"
	"github.com/snir-david/ESTL/pkg/fixedtree"
	"github.com/snir-david/ESTL/pkg/safeconv"
)

const msPerSecond = 1000

// BenchCommand holds configuration and dependencies for the bench command.
type BenchCommand struct {
	configPath string
	ops        int
	capacity   int
	seed       int64
	plotPath   string
	format     string

	loadCfg configLoader
}

// NewBenchCommand creates the bench command.
func NewBenchCommand() *cobra.Command {
	return newBenchCommandWithDeps(config.LoadConfig)
}

func newBenchCommandWithDeps(loadCfg configLoader) *cobra.Command {
	bc := &BenchCommand{loadCfg: loadCfg}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare balancing strategies and probing policies",
		Long: "Time insert, lookup, mixed, and erase phases for every tree balancing\n" +
			"strategy and hash probing policy at the same fixed capacity.",
		Args: cobra.NoArgs,
		RunE: bc.run,
	}

	cmd.Flags().StringVarP(&bc.configPath, "config", "c", "", "Config file path (default: search .estl.yaml)")
	cmd.Flags().IntVar(&bc.ops, "ops", 0, "Operations per phase (0 = use config)")
	cmd.Flags().IntVar(&bc.capacity, "capacity", 0, "Container capacity (0 = use config)")
	cmd.Flags().Int64Var(&bc.seed, "seed", 0, "Workload random seed (0 = use config)")
	cmd.Flags().StringVar(&bc.plotPath, "plot", "", "Write an HTML chart of the results to this file")
	cmd.Flags().StringVar(&bc.format, "format", reportFormatTable, "Report format: table, yaml")

	return cmd
}

func (bc *BenchCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := bc.loadCfg(bc.configPath)
	if err != nil {
		return err
	}

	if bc.ops > 0 {
		cfg.Bench.Ops = bc.ops
	}

	if bc.capacity > 0 {
		cfg.Container.Capacity = bc.capacity
	}

	seed := cfg.Soak.Seed
	if bc.seed != 0 {
		seed = bc.seed
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	report := BenchReport{
		Capacity: cfg.Container.Capacity,
		Ops:      cfg.Bench.Ops,
		Seed:     seed,
	}

	for _, c := range benchCases() {
		caseReport, caseErr := runBenchCase(c, cfg.Container.Capacity, cfg.Bench.Ops, seed)
		if caseErr != nil {
			return fmt.Errorf("bench %s: %w", c.name, caseErr)
		}

		report.Cases = append(report.Cases, caseReport)
	}

	err = renderBenchReport(cmd.OutOrStdout(), bc.format, report)
	if err != nil {
		return err
	}

	if bc.plotPath != "" {
		return writeBenchPlot(bc.plotPath, report)
	}

	return nil
}

// benchCase names one container construction under test.
type benchCase struct {
	name  string
	build func(capacity int) (container, error)
}

func benchCases() []benchCase {
	return []benchCase{
		{name: "tree/avl", build: func(capacity int) (container, error) {
			return fixedmap.New[uint32, uint32](capacity, fixedmap.WithStrategy(fixedtree.StrategyAVL))
		}},
		{name: "tree/redblack", build: func(capacity int) (container, error) {
			return fixedmap.New[uint32, uint32](capacity, fixedmap.WithStrategy(fixedtree.StrategyRedBlack))
		}},
		{name: "hash/chaining", build: func(capacity int) (container, error) {
			return fixedhash.New[uint32, uint32](capacity, fixedhash.WithProbing[uint32](fixedhash.Chaining))
		}},
		{name: "hash/linear", build: func(capacity int) (container, error) {
			return fixedhash.New[uint32, uint32](capacity, fixedhash.WithProbing[uint32](fixedhash.LinearProbing))
		}},
		{name: "hash/quadratic", build: func(capacity int) (container, error) {
			return fixedhash.New[uint32, uint32](capacity, fixedhash.WithProbing[uint32](fixedhash.QuadraticProbing))
		}},
	}
}

// runBenchCase times the four phases for one container build. Insert and
// erase walk a shuffled permutation of the full capacity; lookup and mixed
// run ops operations each.
func runBenchCase(c benchCase, capacity, ops int, seed int64) (BenchCaseReport, error) {
	target, err := c.build(capacity)
	if err != nil {
		return BenchCaseReport{}, err
	}

	keys := shuffledKeys(capacity, seed)

	insert := timePhase(func() {
		for _, key := range keys {
			_ = target.Insert(key, key)
		}
	})

	rng := rand.New(rand.NewSource(seed))
	lookup := timePhase(func() {
		for i := 0; i < ops; i++ {
			_, _ = target.Get(keys[rng.Intn(len(keys))])
		}
	})

	mixedOps := workload.Generate(workload.ProfileMixed, ops, safeconv.MustIntToUint32(2*capacity), seed)
	mixed := timePhase(func() {
		for _, op := range mixedOps {
			applyBenchOp(target, op)
		}
	})

	target.Clear()

	for _, key := range keys {
		_ = target.Insert(key, key)
	}

	erase := timePhase(func() {
		for _, key := range keys {
			_ = target.Erase(key)
		}
	})

	total := insert + lookup + mixed + erase

	return BenchCaseReport{
		Name:     c.name,
		InsertNs: nsPerOp(insert, capacity),
		LookupNs: nsPerOp(lookup, ops),
		MixedNs:  nsPerOp(mixed, ops),
		EraseNs:  nsPerOp(erase, capacity),
		TotalMs:  total.Seconds() * msPerSecond,
	}, nil
}

// applyBenchOp drives target without verification. Errors are part of the
// workload, a full container rejecting inserts is the behavior under test.
func applyBenchOp(target container, op workload.Op) {
	switch op.Kind {
	case workload.OpInsert:
		_ = target.Insert(op.Key, op.Value)
	case workload.OpInsertOrAssign:
		_, _ = target.InsertOrAssign(op.Key, op.Value)
	case workload.OpErase:
		_ = target.Erase(op.Key)
	case workload.OpGet:
		_, _ = target.Get(op.Key)
	case workload.OpExtract:
		_, _ = target.Extract(op.Key)
	case workload.OpClear:
		target.Clear()
	}
}

// shuffledKeys returns 0..n-1 in a seed-determined random order.
func shuffledKeys(n int, seed int64) []uint32 {
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = uint32(i)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	return keys
}

func timePhase(fn func()) time.Duration {
	startedAt := time.Now()
	fn()

	return time.Since(startedAt)
}

func nsPerOp(d time.Duration, n int) float64 {
	if n == 0 {
		return 0
	}

	return float64(d.Nanoseconds()) / float64(n)
}

// writeBenchPlot renders a grouped bar chart of the per-phase timings.
func writeBenchPlot(path string, report BenchReport) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "estl bench",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Container benchmark",
			Subtitle: fmt.Sprintf("capacity %d, %d ops per phase", report.Capacity, report.Ops),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ns/op"}),
	)

	names := make([]string, len(report.Cases))
	insertData := make([]opts.BarData, len(report.Cases))
	lookupData := make([]opts.BarData, len(report.Cases))
	mixedData := make([]opts.BarData, len(report.Cases))
	eraseData := make([]opts.BarData, len(report.Cases))

	for i, c := range report.Cases {
		names[i] = c.Name
		insertData[i] = opts.BarData{Value: c.InsertNs}
		lookupData[i] = opts.BarData{Value: c.LookupNs}
		mixedData[i] = opts.BarData{Value: c.MixedNs}
		eraseData[i] = opts.BarData{Value: c.EraseNs}
	}

	bar.SetXAxis(names)
	bar.AddSeries("insert", insertData)
	bar.AddSeries("lookup", lookupData)
	bar.AddSeries("mixed", mixedData)
	bar.AddSeries("erase", eraseData)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot %s: %w", path, err)
	}

	err = bar.Render(f)
	if err != nil {
		f.Close()

		return fmt.Errorf("render plot: %w", err)
	}

	return f.Close()
}
