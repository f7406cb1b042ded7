package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Prometheus bundles a scrape endpoint with the MeterProvider feeding it.
// Instruments created through Meter surface on Handler.
type Prometheus struct {
	Handler  http.Handler
	provider *sdkmetric.MeterProvider
}

// NewPrometheus creates a Prometheus exporter backed by an OTel
// MeterProvider and an [http.Handler] serving the /metrics scrape format.
// Each call builds an independent registry, so multiple instances never
// fight over collector registration.
func NewPrometheus() (*Prometheus, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Prometheus{
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		provider: provider,
	}, nil
}

// Meter returns a meter whose instruments are collected by the exporter.
func (p *Prometheus) Meter(name string) metric.Meter {
	return p.provider.Meter(name)
}

// Shutdown flushes and stops the provider.
func (p *Prometheus) Shutdown(ctx context.Context) error {
	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}

	return nil
}
