package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOpsTotal        = "estl.container.ops.total"
	metricOpDuration      = "estl.container.op.duration.seconds"
	metricRejectionsTotal = "estl.container.rejections.total"
	metricEntries         = "estl.container.entries"

	attrOp        = "op"
	attrStatus    = "status"
	attrContainer = "container"

	// StatusOK and StatusError are the status attribute values recorded
	// with every operation.
	StatusOK    = "ok"
	StatusError = "error"
)

// opDurationBucketBoundaries covers 100ns to 10ms. Container operations
// are in-memory, so the interesting range sits far below typical
// request-latency buckets.
var opDurationBucketBoundaries = []float64{
	1e-7, 2.5e-7, 5e-7, 1e-6, 2.5e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3, 1e-2,
}

// ContainerMetrics holds the OTel instruments describing container load:
// operation rate and latency, capacity rejections, and live entry counts.
type ContainerMetrics struct {
	opsTotal        metric.Int64Counter
	opDuration      metric.Float64Histogram
	rejectionsTotal metric.Int64Counter
	entries         metric.Int64UpDownCounter
}

// NewContainerMetrics creates the container instruments from the given meter.
func NewContainerMetrics(mt metric.Meter) (*ContainerMetrics, error) {
	b := newInstrumentBuilder(mt)

	cm := &ContainerMetrics{
		opsTotal:        b.counter(metricOpsTotal, "Total number of container operations", "{operation}"),
		opDuration:      b.histogram(metricOpDuration, "Container operation duration in seconds", "s", opDurationBucketBoundaries),
		rejectionsTotal: b.counter(metricRejectionsTotal, "Operations rejected because the container was full", "{operation}"),
		entries:         b.upDownCounter(metricEntries, "Number of live entries", "{entry}"),
	}

	if err := b.err(); err != nil {
		return nil, err
	}

	return cm, nil
}

// RecordOp records one completed operation with its name, status, and duration.
func (cm *ContainerMetrics) RecordOp(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	cm.opsTotal.Add(ctx, 1, attrs)
	cm.opDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRejection counts an operation refused for lack of capacity.
func (cm *ContainerMetrics) RecordRejection(ctx context.Context, op string) {
	cm.rejectionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOp, op),
	))
}

// TrackEntries moves the live entry gauge of one container by delta:
// positive after inserts, negative after erases.
func (cm *ContainerMetrics) TrackEntries(ctx context.Context, container string, delta int64) {
	cm.entries.Add(ctx, delta, metric.WithAttributes(
		attribute.String(attrContainer, container),
	))
}
