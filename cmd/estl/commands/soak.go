// Package commands implements CLI command handlers for estl.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/snir-david/ESTL/internal/config"
	"github.com/snir-david/ESTL/internal/observability"
	"github.com/snir-david/ESTL/internal/workload"
	"github.com/snir-david/ESTL/pkg/fixedmap"
	"github.com/snir-david/ESTL/pkg/safeconv"
)

const (
	serviceSoak = "estl-soak"

	// mismatchLogLimit caps how many divergences are logged individually;
	// the rest only raise the counter.
	mismatchLogLimit = 5

	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// ErrVerificationFailed is returned when the container diverges from the
// reference model during a soak run.
var ErrVerificationFailed = errors.New("container diverged from reference model")

// configLoader resolves the effective configuration for a command run.
type configLoader func(path string) (*config.Config, error)

// SoakCommand holds configuration and dependencies for the soak command.
type SoakCommand struct {
	configPath string

	capacity int
	strategy string
	shards   int

	ops      int
	keySpace int
	profile  string
	seed     int64

	replayPath string
	recordPath string

	format      string
	metricsAddr string
	noVerify    bool
	noColor     bool

	loadCfg configLoader
}

// NewSoakCommand creates the soak command.
func NewSoakCommand() *cobra.Command {
	return newSoakCommandWithDeps(config.LoadConfig)
}

func newSoakCommandWithDeps(loadCfg configLoader) *cobra.Command {
	sc := &SoakCommand{loadCfg: loadCfg}

	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Drive a workload against a container and verify it",
		Long: "Drive a generated or recorded workload against a fixed-capacity ordered\n" +
			"map, mirroring every observed outcome into an unbounded reference model\n" +
			"and reporting any divergence.",
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().StringVarP(&sc.configPath, "config", "c", "", "Config file path (default: search .estl.yaml)")
	cmd.Flags().IntVar(&sc.capacity, "capacity", 0, "Container capacity (0 = use config)")
	cmd.Flags().StringVar(&sc.strategy, "strategy", "", "Balancing strategy: redblack, avl (empty = use config)")
	cmd.Flags().IntVar(&sc.shards, "shards", 0, "Number of map shards (0 = use config)")
	cmd.Flags().IntVar(&sc.ops, "ops", 0, "Operations to generate (0 = use config)")
	cmd.Flags().IntVar(&sc.keySpace, "key-space", 0, "Distinct keys to draw from (0 = use config)")
	cmd.Flags().StringVar(&sc.profile, "profile", "", "Workload profile: mixed, insert-heavy, read-heavy, churn (empty = use config)")
	cmd.Flags().Int64Var(&sc.seed, "seed", 0, "Workload random seed (0 = use config)")
	cmd.Flags().StringVar(&sc.replayPath, "replay", "", "Replay a recorded trace file instead of generating")
	cmd.Flags().StringVar(&sc.recordPath, "record", "", "Record the generated workload to a trace file")
	cmd.Flags().StringVar(&sc.format, "format", reportFormatTable, "Report format: table, yaml")
	cmd.Flags().StringVar(&sc.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	cmd.Flags().BoolVar(&sc.noVerify, "no-verify", false, "Skip the reference model check")
	cmd.Flags().BoolVar(&sc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (sc *SoakCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := sc.loadCfg(sc.configPath)
	if err != nil {
		return err
	}

	sc.applyOverrides(cfg)

	err = cfg.Validate()
	if err != nil {
		return err
	}

	setColorOutput(sc.noColor)

	logger := observability.NewLogger(cmd.ErrOrStderr(), observability.LoggerConfig{
		Level:   cfg.Log.Level,
		JSON:    cfg.Log.JSON,
		Service: serviceSoak,
	})

	ops, profileLabel, err := sc.resolveWorkload(cfg, logger)
	if err != nil {
		return err
	}

	target, err := buildContainer(cfg.Container)
	if err != nil {
		return err
	}

	tel, err := startTelemetry(cfg.Soak.MetricsAddr, logger)
	if err != nil {
		return err
	}
	defer tel.stop()

	logger.Info("soak starting",
		"ops", len(ops),
		"strategy", cfg.Container.Strategy,
		"capacity", cfg.Container.Capacity,
		"shards", cfg.Container.Shards,
		"profile", profileLabel)

	result := runSoak(cmd.Context(), target, ops, soakOptions{
		verify:         !sc.noVerify,
		metrics:        tel.metrics,
		logger:         logger,
		containerLabel: cfg.Container.Strategy,
	})

	logger.Info("soak finished",
		"elapsed", result.elapsed.Round(time.Millisecond).String(),
		"mismatches", result.mismatches)

	report := buildSoakReport(cfg, profileLabel, !sc.noVerify, result, target)

	err = renderSoakReport(cmd.OutOrStdout(), sc.format, report)
	if err != nil {
		return err
	}

	if result.mismatches > 0 {
		return fmt.Errorf("%w: %d operations disagreed", ErrVerificationFailed, result.mismatches)
	}

	return nil
}

// applyOverrides folds non-zero flag values into cfg; zero values keep the
// file or default value.
func (sc *SoakCommand) applyOverrides(cfg *config.Config) {
	if sc.capacity > 0 {
		cfg.Container.Capacity = sc.capacity
	}

	if sc.strategy != "" {
		cfg.Container.Strategy = sc.strategy
	}

	if sc.shards > 0 {
		cfg.Container.Shards = sc.shards
	}

	if sc.ops > 0 {
		cfg.Soak.Ops = sc.ops
	}

	if sc.keySpace > 0 {
		cfg.Soak.KeySpace = sc.keySpace
	}

	if sc.profile != "" {
		cfg.Soak.Profile = sc.profile
	}

	if sc.seed != 0 {
		cfg.Soak.Seed = sc.seed
	}

	if sc.metricsAddr != "" {
		cfg.Soak.MetricsAddr = sc.metricsAddr
	}
}

// resolveWorkload returns the operations to run and a label describing
// where they came from.
func (sc *SoakCommand) resolveWorkload(cfg *config.Config, logger *slog.Logger) ([]workload.Op, string, error) {
	if sc.replayPath != "" {
		ops, err := sc.replayTrace(logger)

		return ops, "replay", err
	}

	profile, err := workload.ParseProfile(cfg.Soak.Profile)
	if err != nil {
		return nil, "", err
	}

	ops := workload.Generate(profile, cfg.Soak.Ops, safeconv.MustIntToUint32(cfg.Soak.KeySpace), cfg.Soak.Seed)

	if sc.recordPath != "" {
		err = sc.recordTrace(ops, logger)
		if err != nil {
			return nil, "", err
		}
	}

	return ops, profile.String(), nil
}

func (sc *SoakCommand) replayTrace(logger *slog.Logger) ([]workload.Op, error) {
	f, err := os.Open(sc.replayPath)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", sc.replayPath, err)
	}
	defer f.Close()

	ops, err := workload.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", sc.replayPath, err)
	}

	logger.Info("trace loaded", "path", sc.replayPath, "ops", len(ops))

	return ops, nil
}

func (sc *SoakCommand) recordTrace(ops []workload.Op, logger *slog.Logger) error {
	f, err := os.Create(sc.recordPath)
	if err != nil {
		return fmt.Errorf("create trace %s: %w", sc.recordPath, err)
	}

	err = workload.Write(f, ops)
	if err != nil {
		f.Close()

		return fmt.Errorf("write trace %s: %w", sc.recordPath, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close trace %s: %w", sc.recordPath, err)
	}

	info, err := os.Stat(sc.recordPath)
	if err == nil {
		logger.Info("trace recorded",
			"path", sc.recordPath,
			"ops", len(ops),
			"size", humanize.Bytes(safeconv.MustInt64ToUint64(info.Size())))
	}

	return nil
}

// telemetry bundles the optional metrics endpoint of a soak run.
type telemetry struct {
	metrics *observability.ContainerMetrics
	server  *http.Server
	prom    *observability.Prometheus
	logger  *slog.Logger
}

// startTelemetry brings up a Prometheus scrape endpoint on addr. An empty
// addr disables metrics and returns an inert bundle.
func startTelemetry(addr string, logger *slog.Logger) (*telemetry, error) {
	if addr == "" {
		return &telemetry{}, nil
	}

	prom, err := observability.NewPrometheus()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewContainerMetrics(prom.Meter("estl/soak"))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	logger.Info("metrics endpoint up", "addr", addr)

	return &telemetry{metrics: metrics, server: server, prom: prom, logger: logger}, nil
}

// stop shuts the metrics endpoint down and flushes the meter provider.
func (t *telemetry) stop() {
	if t.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	err := t.server.Shutdown(ctx)
	if err != nil {
		t.logger.Error("metrics server shutdown failed", "error", err)
	}

	err = t.prom.Shutdown(ctx)
	if err != nil {
		t.logger.Error("meter provider shutdown failed", "error", err)
	}
}

// soakOptions tunes one runSoak call.
type soakOptions struct {
	verify         bool
	metrics        *observability.ContainerMetrics
	logger         *slog.Logger
	containerLabel string
}

// soakResult aggregates the outcome of one soak run.
type soakResult struct {
	applied    int
	mismatches int
	failed     int
	rejections int
	elapsed    time.Duration
	counts     map[workload.OpKind]int
}

// opOutcome describes one applied operation: the error it surfaced, the
// entry count change, and whether the container disagreed with the model.
type opOutcome struct {
	err      error
	delta    int64
	mismatch bool
}

// runSoak applies ops to target in order, mirroring every observed outcome
// into an unbounded reference model. A mismatch means the container and
// the model disagree about a key's presence or value.
func runSoak(ctx context.Context, target container, ops []workload.Op, opts soakOptions) soakResult {
	oracle := make(map[uint32]uint32, target.Cap())
	result := soakResult{counts: make(map[workload.OpKind]int, len(workload.Kinds()))}

	startedAt := time.Now()

	for _, op := range ops {
		result.counts[op.Kind]++

		opStart := time.Now()
		out := applyOp(target, oracle, op, opts.verify)
		opElapsed := time.Since(opStart)

		if out.err != nil {
			result.failed++
		}

		if errors.Is(out.err, fixedmap.ErrCapacityExhausted) {
			result.rejections++
		}

		if out.mismatch {
			result.mismatches++
			if opts.logger != nil && result.mismatches <= mismatchLogLimit {
				opts.logger.Error("state mismatch",
					"op", op.Kind.String(),
					"key", op.Key)
			}
		}

		recordOpMetrics(ctx, opts, op, out, opElapsed)
	}

	result.applied = len(ops)
	result.elapsed = time.Since(startedAt)

	return result
}

func recordOpMetrics(ctx context.Context, opts soakOptions, op workload.Op, out opOutcome, elapsed time.Duration) {
	if opts.metrics == nil {
		return
	}

	status := observability.StatusOK
	if out.err != nil {
		status = observability.StatusError
	}

	opts.metrics.RecordOp(ctx, op.Kind.String(), status, elapsed)

	if errors.Is(out.err, fixedmap.ErrCapacityExhausted) {
		opts.metrics.RecordRejection(ctx, op.Kind.String())
	}

	if out.delta != 0 {
		opts.metrics.TrackEntries(ctx, opts.containerLabel, out.delta)
	}
}

// applyOp drives one operation and keeps the reference model in sync with
// what the container actually did, so rejected inserts never desync it.
func applyOp(target container, oracle map[uint32]uint32, op workload.Op, verify bool) opOutcome {
	switch op.Kind {
	case workload.OpInsert:
		return applyInsert(target, oracle, op, verify)
	case workload.OpInsertOrAssign:
		return applyInsertOrAssign(target, oracle, op, verify)
	case workload.OpErase:
		return applyErase(target, oracle, op, verify)
	case workload.OpGet:
		return applyGet(target, oracle, op, verify)
	case workload.OpExtract:
		return applyExtract(target, oracle, op, verify)
	case workload.OpClear:
		out := opOutcome{delta: -int64(target.Len())}
		target.Clear()
		clear(oracle)

		return out
	default:
		return opOutcome{}
	}
}

func applyInsert(target container, oracle map[uint32]uint32, op workload.Op, verify bool) opOutcome {
	_, had := oracle[op.Key]

	err := target.Insert(op.Key, op.Value)
	out := opOutcome{err: err}

	switch {
	case err == nil:
		out.delta = 1
		out.mismatch = verify && had
		oracle[op.Key] = op.Value
	case errors.Is(err, fixedmap.ErrDuplicateKey):
		out.mismatch = verify && !had
	case errors.Is(err, fixedmap.ErrCapacityExhausted):
		// A present key reports duplicate even on a full container, so a
		// capacity rejection implies the key was absent.
		out.mismatch = verify && had
	}

	return out
}

func applyInsertOrAssign(target container, oracle map[uint32]uint32, op workload.Op, verify bool) opOutcome {
	_, had := oracle[op.Key]

	inserted, err := target.InsertOrAssign(op.Key, op.Value)
	out := opOutcome{err: err}

	switch {
	case err == nil:
		if inserted {
			out.delta = 1
		}

		out.mismatch = verify && inserted == had
		oracle[op.Key] = op.Value
	case errors.Is(err, fixedmap.ErrCapacityExhausted):
		out.mismatch = verify && had
	}

	return out
}

func applyErase(target container, oracle map[uint32]uint32, op workload.Op, verify bool) opOutcome {
	_, had := oracle[op.Key]

	err := target.Erase(op.Key)
	out := opOutcome{err: err}

	switch {
	case err == nil:
		out.delta = -1
		out.mismatch = verify && !had

		delete(oracle, op.Key)
	case errors.Is(err, fixedmap.ErrKeyNotFound):
		out.mismatch = verify && had
	}

	return out
}

func applyGet(target container, oracle map[uint32]uint32, op workload.Op, verify bool) opOutcome {
	value, ok := target.Get(op.Key)

	want, had := oracle[op.Key]

	return opOutcome{mismatch: verify && (ok != had || (ok && value != want))}
}

func applyExtract(target container, oracle map[uint32]uint32, op workload.Op, verify bool) opOutcome {
	want, had := oracle[op.Key]

	value, err := target.Extract(op.Key)
	out := opOutcome{err: err}

	switch {
	case err == nil:
		out.delta = -1
		out.mismatch = verify && (!had || value != want)

		delete(oracle, op.Key)
	case errors.Is(err, fixedmap.ErrKeyNotFound):
		out.mismatch = verify && had
	}

	return out
}
