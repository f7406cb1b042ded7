package commands

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/snir-david/ESTL/internal/config"
	"github.com/snir-david/ESTL/internal/workload"
)

const (
	reportFormatTable = "table"
	reportFormatYAML  = "yaml"

	percentScale = 100
)

// ErrUnknownReportFormat is returned for report formats other than table
// and yaml.
var ErrUnknownReportFormat = errors.New("unknown report format")

// SoakReport is the operator-facing summary of a soak run.
type SoakReport struct {
	Strategy       string         `yaml:"strategy"`
	Capacity       int            `yaml:"capacity"`
	Shards         int            `yaml:"shards"`
	Profile        string         `yaml:"profile"`
	Seed           int64          `yaml:"seed"`
	Ops            int            `yaml:"ops"`
	ElapsedSeconds float64        `yaml:"elapsed_seconds"`
	OpsPerSecond   float64        `yaml:"ops_per_second"`
	Verified       bool           `yaml:"verified"`
	Mismatches     int            `yaml:"mismatches"`
	Entries        int            `yaml:"entries"`
	Utilization    float64        `yaml:"utilization"`
	HitRate        float64        `yaml:"hit_rate"`
	Rejections     int64          `yaml:"rejections"`
	OpCounts       map[string]int `yaml:"op_counts"`
}

// BenchCaseReport holds per-phase timings for one container build.
type BenchCaseReport struct {
	Name     string  `yaml:"name"`
	InsertNs float64 `yaml:"insert_ns_per_op"`
	LookupNs float64 `yaml:"lookup_ns_per_op"`
	MixedNs  float64 `yaml:"mixed_ns_per_op"`
	EraseNs  float64 `yaml:"erase_ns_per_op"`
	TotalMs  float64 `yaml:"total_ms"`
}

// BenchReport is the operator-facing summary of a bench run.
type BenchReport struct {
	Capacity int               `yaml:"capacity"`
	Ops      int               `yaml:"ops"`
	Seed     int64             `yaml:"seed"`
	Cases    []BenchCaseReport `yaml:"cases"`
}

// setColorOutput disables colored output globally when noColor is set.
func setColorOutput(noColor bool) {
	if noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}
}

func buildSoakReport(cfg *config.Config, profileLabel string, verified bool, result soakResult, target container) SoakReport {
	report := SoakReport{
		Strategy:       cfg.Container.Strategy,
		Capacity:       cfg.Container.Capacity,
		Shards:         cfg.Container.Shards,
		Profile:        profileLabel,
		Seed:           cfg.Soak.Seed,
		Ops:            result.applied,
		ElapsedSeconds: result.elapsed.Seconds(),
		Verified:       verified,
		Mismatches:     result.mismatches,
		Entries:        target.Len(),
		OpCounts:       make(map[string]int, len(result.counts)),
	}

	if result.elapsed > 0 {
		report.OpsPerSecond = float64(result.applied) / result.elapsed.Seconds()
	}

	if target.Cap() > 0 {
		report.Utilization = float64(target.Len()) / float64(target.Cap())
	}

	if sp, ok := target.(statsProvider); ok {
		stats := sp.Stats()
		report.HitRate = stats.HitRate()
		report.Rejections = stats.Rejections
	}

	for kind, count := range result.counts {
		report.OpCounts[kind.String()] = count
	}

	return report
}

func renderSoakReport(w io.Writer, format string, report SoakReport) error {
	switch format {
	case reportFormatTable:
		renderSoakTable(w, report)

		return nil
	case reportFormatYAML:
		return writeYAML(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportFormat, format)
	}
}

func renderBenchReport(w io.Writer, format string, report BenchReport) error {
	switch format {
	case reportFormatTable:
		renderBenchTable(w, report)

		return nil
	case reportFormatYAML:
		return writeYAML(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportFormat, format)
	}
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// newReportTable returns a writer with the house table style.
func newReportTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func renderSoakTable(w io.Writer, report SoakReport) {
	tbl := newReportTable()
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"strategy", report.Strategy})
	tbl.AppendRow(table.Row{"capacity", humanize.Comma(int64(report.Capacity))})
	tbl.AppendRow(table.Row{"shards", report.Shards})
	tbl.AppendRow(table.Row{"profile", report.Profile})
	tbl.AppendRow(table.Row{"seed", report.Seed})
	tbl.AppendRow(table.Row{"ops", humanize.Comma(int64(report.Ops))})
	tbl.AppendRow(table.Row{"elapsed", fmtSeconds(report.ElapsedSeconds)})
	tbl.AppendRow(table.Row{"throughput", humanize.CommafWithDigits(report.OpsPerSecond, 0) + " ops/s"})
	tbl.AppendRow(table.Row{"entries", fmt.Sprintf("%s (%.1f%% full)",
		humanize.Comma(int64(report.Entries)), report.Utilization*percentScale)})
	tbl.AppendRow(table.Row{"hit rate", fmt.Sprintf("%.1f%%", report.HitRate*percentScale)})
	tbl.AppendRow(table.Row{"rejections", humanize.Comma(report.Rejections)})

	fmt.Fprintf(w, "Soak summary:\n%s\n\n", tbl.Render())

	renderOpCounts(w, report)
	renderSoakVerdict(w, report)
}

func renderOpCounts(w io.Writer, report SoakReport) {
	tbl := newReportTable()
	tbl.AppendHeader(table.Row{"Operation", "Count", "Share"})

	total := 0
	for _, count := range report.OpCounts {
		total += count
	}

	for _, kind := range workload.Kinds() {
		count, ok := report.OpCounts[kind.String()]
		if !ok {
			continue
		}

		share := 0.0
		if total > 0 {
			share = float64(count) / float64(total) * percentScale
		}

		tbl.AppendRow(table.Row{kind.String(), humanize.Comma(int64(count)), fmt.Sprintf("%.1f%%", share)})
	}

	tbl.AppendFooter(table.Row{"total", humanize.Comma(int64(total)), ""})

	fmt.Fprintf(w, "Operations:\n%s\n\n", tbl.Render())
}

func renderSoakVerdict(w io.Writer, report SoakReport) {
	if !report.Verified {
		fmt.Fprintln(w, "verification skipped")

		return
	}

	if report.Mismatches == 0 {
		color.New(color.FgGreen).Fprintf(w, "soak passed: %s operations, no divergence\n",
			humanize.Comma(int64(report.Ops)))

		return
	}

	color.New(color.FgRed).Fprintf(w, "soak FAILED: %d operations diverged from the reference model\n",
		report.Mismatches)
}

func renderBenchTable(w io.Writer, report BenchReport) {
	tbl := newReportTable()
	tbl.AppendHeader(table.Row{"Container", "Insert ns/op", "Lookup ns/op", "Mixed ns/op", "Erase ns/op", "Total"})

	fastest := ""
	best := math.MaxFloat64

	for _, c := range report.Cases {
		if c.TotalMs < best {
			best = c.TotalMs
			fastest = c.Name
		}

		tbl.AppendRow(table.Row{
			c.Name,
			humanize.CommafWithDigits(c.InsertNs, 0),
			humanize.CommafWithDigits(c.LookupNs, 0),
			humanize.CommafWithDigits(c.MixedNs, 0),
			humanize.CommafWithDigits(c.EraseNs, 0),
			fmt.Sprintf("%.1fms", c.TotalMs),
		})
	}

	tbl.AppendFooter(table.Row{"fastest: " + fastest})

	fmt.Fprintf(w, "Bench results (capacity %s, %s ops per phase):\n%s\n",
		humanize.Comma(int64(report.Capacity)), humanize.Comma(int64(report.Ops)), tbl.Render())
}

func fmtSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}
