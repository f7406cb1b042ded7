package observability

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrumentBuilder creates a family of OTel instruments in one pass and
// collects every creation failure, so constructors wire all instruments
// first and check a single joined error afterwards.
type instrumentBuilder struct {
	meter metric.Meter
	errs  []error
}

func newInstrumentBuilder(mt metric.Meter) *instrumentBuilder {
	return &instrumentBuilder{meter: mt}
}

func (b *instrumentBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.record(name, err)

	return c
}

func (b *instrumentBuilder) histogram(name, desc, unit string, bounds []float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := b.meter.Float64Histogram(name, opts...)
	b.record(name, err)

	return h
}

func (b *instrumentBuilder) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.record(name, err)

	return c
}

func (b *instrumentBuilder) record(name string, err error) {
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("create %s: %w", name, err))
	}
}

// err joins every creation failure, nil when all instruments came up.
func (b *instrumentBuilder) err() error {
	return errors.Join(b.errs...)
}
