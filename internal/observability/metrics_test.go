package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/snir-david/ESTL/internal/observability"
)

func setupTestMeter(t *testing.T) (*observability.ContainerMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	cm, err := observability.NewContainerMetrics(meter)
	require.NoError(t, err)

	return cm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestContainerMetrics_RecordOp(t *testing.T) {
	t.Parallel()

	cm, reader := setupTestMeter(t)
	ctx := context.Background()

	cm.RecordOp(ctx, "insert", observability.StatusOK, 250*time.Nanosecond)
	cm.RecordOp(ctx, "erase", observability.StatusError, time.Microsecond)

	rm := collectMetrics(t, reader)

	opsTotal := findMetric(rm, "estl.container.ops.total")
	require.NotNil(t, opsTotal, "estl.container.ops.total metric not found")

	sum, ok := opsTotal.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	assert.Equal(t, int64(2), total)

	duration := findMetric(rm, "estl.container.op.duration.seconds")
	require.NotNil(t, duration, "estl.container.op.duration.seconds metric not found")
}

func TestContainerMetrics_RecordRejection(t *testing.T) {
	t.Parallel()

	cm, reader := setupTestMeter(t)
	ctx := context.Background()

	cm.RecordRejection(ctx, "insert")

	rm := collectMetrics(t, reader)

	rejections := findMetric(rm, "estl.container.rejections.total")
	require.NotNil(t, rejections, "estl.container.rejections.total metric not found")
}

func TestContainerMetrics_TrackEntries(t *testing.T) {
	t.Parallel()

	cm, reader := setupTestMeter(t)
	ctx := context.Background()

	cm.TrackEntries(ctx, "ordered-map", 3)
	cm.TrackEntries(ctx, "ordered-map", -1)

	rm := collectMetrics(t, reader)

	entries := findMetric(rm, "estl.container.entries")
	require.NotNil(t, entries, "estl.container.entries metric not found")

	sum, ok := entries.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}
