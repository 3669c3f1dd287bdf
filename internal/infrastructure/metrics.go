package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ServiceName    = "salespulse"
	ServiceVersion = "v1.0.0"
	MeterName      = "salespulse"
)

// Metrics bundles the OpenTelemetry meter provider, the pipeline
// instruments, and the Prometheus scrape handler.
type Metrics struct {
	MeterProvider *sdkmetric.MeterProvider
	Meter         metric.Meter
	Handler       http.Handler

	// Pipeline instruments
	RowsIngested      metric.Int64Counter
	CoercionFailures  metric.Int64Counter
	DuplicatesDropped metric.Int64Counter
	ForecastsServed   metric.Int64Counter
}

// InitializeMetrics sets up the OpenTelemetry meter provider with a
// Prometheus exporter and registers the pipeline instruments.
func InitializeMetrics(logger *slog.Logger) (*Metrics, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(MeterName)

	m := &Metrics{
		MeterProvider: provider,
		Meter:         meter,
		Handler:       promhttp.Handler(),
	}

	if m.RowsIngested, err = meter.Int64Counter("salespulse_rows_ingested_total",
		metric.WithDescription("Raw rows accepted into the cleaning stage")); err != nil {
		return nil, fmt.Errorf("failed to create rows_ingested counter: %w", err)
	}
	if m.CoercionFailures, err = meter.Int64Counter("salespulse_coercion_failures_total",
		metric.WithDescription("Row fields that failed date or numeric coercion")); err != nil {
		return nil, fmt.Errorf("failed to create coercion_failures counter: %w", err)
	}
	if m.DuplicatesDropped, err = meter.Int64Counter("salespulse_duplicates_dropped_total",
		metric.WithDescription("Exact duplicate rows collapsed during cleaning")); err != nil {
		return nil, fmt.Errorf("failed to create duplicates_dropped counter: %w", err)
	}
	if m.ForecastsServed, err = meter.Int64Counter("salespulse_forecasts_served_total",
		metric.WithDescription("Forecast requests completed successfully")); err != nil {
		return nil, fmt.Errorf("failed to create forecasts_served counter: %w", err)
	}

	logger.Info("metrics initialized",
		slog.String("service", ServiceName),
		slog.String("exporter", "prometheus"))

	return m, nil
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.MeterProvider == nil {
		return nil
	}
	return m.MeterProvider.Shutdown(ctx)
}
