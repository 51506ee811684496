package infrastructure

import (
	"go.opentelemetry.io/otel/metric"
)

// ExportMetrics holds the instruments recorded by an export run
type ExportMetrics struct {
	RowsFetched       metric.Int64Counter
	DomainsWritten    metric.Int64Counter
	ExportRuns        metric.Int64Counter
	ExportDuration    metric.Float64Histogram
	LastSuccessUnixTS metric.Int64Gauge
}

// NewExportMetrics creates the export instruments on meter
func NewExportMetrics(meter metric.Meter) (*ExportMetrics, error) {
	rowsFetched, err := meter.Int64Counter(
		"crux_rows_fetched",
		metric.WithDescription("Origin rows returned by the ranking query"),
	)
	if err != nil {
		return nil, err
	}

	domainsWritten, err := meter.Int64Counter(
		"crux_domains_written",
		metric.WithDescription("Deduplicated domain rows written to the export"),
	)
	if err != nil {
		return nil, err
	}

	exportRuns, err := meter.Int64Counter(
		"crux_export_runs",
		metric.WithDescription("Export runs by scope and outcome"),
	)
	if err != nil {
		return nil, err
	}

	exportDuration, err := meter.Float64Histogram(
		"crux_export_duration",
		metric.WithDescription("Export duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	lastSuccess, err := meter.Int64Gauge(
		"crux_export_last_success_timestamp",
		metric.WithDescription("Unix time of the last export that produced an archive"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ExportMetrics{
		RowsFetched:       rowsFetched,
		DomainsWritten:    domainsWritten,
		ExportRuns:        exportRuns,
		ExportDuration:    exportDuration,
		LastSuccessUnixTS: lastSuccess,
	}, nil
}
