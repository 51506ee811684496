package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"cruxcli/internal/config"
)

const (
	ServiceName         = "cruxdownloader"
	InstrumentationName = "cruxcli"
)

// Telemetry holds the tracer and meter used for one batch run.
// Metrics are collected into a private Prometheus registry and written as a
// node-exporter textfile by WriteMetrics; there is no scrape endpoint.
type Telemetry struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	registry    *prometheus.Registry
	metricsFile string
	shutdowns   []func(context.Context) error
	logger      *slog.Logger
}

// NoopTelemetry returns telemetry that records nothing
func NoopTelemetry() *Telemetry {
	return &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		logger: GetLogger(),
	}
}

// InitializeTelemetry sets up tracing and metrics according to cfg.
// Trace output goes to traceOut (stderr when nil) so it never interleaves
// with JSON logs on stdout.
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, version string, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	if traceOut == nil {
		traceOut = os.Stderr
	}

	tel := NoopTelemetry()
	tel.logger = logger
	tel.metricsFile = cfg.MetricsFile

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
		attribute.String("service.instance.id", GenerateRunID()),
	)

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(traceOut),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		tel.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version))
		tel.shutdowns = append(tel.shutdowns, tp.Shutdown)
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if cfg.MetricsFile != "" {
		registry := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		tel.registry = registry
		tel.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(version))
		tel.shutdowns = append(tel.shutdowns, mp.Shutdown)
	}

	logger.DebugContext(ctx, "Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return tel, nil
}

// WriteMetrics writes the collected metrics to the configured textfile.
// It is a no-op when no metrics file is configured.
func (t *Telemetry) WriteMetrics() error {
	if t == nil || t.registry == nil || t.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", t.metricsFile, err)
	}
	t.logger.Debug("Wrote metrics textfile", slog.String("path", t.metricsFile))
	return nil
}

// Shutdown flushes and stops all providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, shutdown := range t.shutdowns {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdowns = nil
	return errors.Join(errs...)
}
