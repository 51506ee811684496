package crux

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "cruxcli/internal/errors"
	"cruxcli/internal/infrastructure"
)

// ErrNoMappableOrigins means a month returned rows but none of their origins
// resolved to a domain
var ErrNoMappableOrigins = stderrors.New("no origin mapped to a registrable domain")

// Downloader turns a month of origin rankings into per-domain rankings
type Downloader struct {
	source    RowSource
	extractor DomainExtractor
	logger    *slog.Logger
	rows      metric.Int64Counter
}

// NewDownloader creates a downloader. A nil logger uses the global logger.
func NewDownloader(source RowSource, extractor DomainExtractor, logger *slog.Logger) *Downloader {
	return &Downloader{
		source:    source,
		extractor: extractor,
		logger:    infrastructure.WithComponent(logger, "downloader"),
	}
}

// WithRowCounter records the number of fetched origin rows on counter
func (d *Downloader) WithRowCounter(counter metric.Int64Counter) *Downloader {
	d.rows = counter
	return d
}

// DumpMonthToDomainRanks fetches the scope's rows for yyyymm and returns one
// record per registrable domain holding the best (lowest) rank among its
// origins, ordered by rank. An unpublished month returns an empty slice and a
// nil error; fetch failures are returned unchanged. Rows that all fail to map
// return a query error wrapping ErrNoMappableOrigins.
func (d *Downloader) DumpMonthToDomainRanks(ctx context.Context, scope Scope, yyyymm int) ([]DomainRecord, error) {
	rows, err := d.source.FetchMonth(ctx, scope, yyyymm)
	if err != nil {
		return nil, err
	}
	if d.rows != nil {
		d.rows.Add(ctx, int64(len(rows)), metric.WithAttributes(attribute.String("scope", string(scope))))
	}
	if len(rows) == 0 {
		return []DomainRecord{}, nil
	}

	mapped := make([]DomainRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		domain, err := d.extractor.ExtractDomain(row.Origin)
		if err != nil {
			skipped++
			infrastructure.WithError(d.logger, err).DebugContext(ctx, "Skipping origin without a domain",
				slog.String("origin", row.Origin))
			continue
		}
		mapped = append(mapped, DomainRecord{Domain: domain, Rank: row.Rank})
	}
	if skipped > 0 {
		d.logger.WarnContext(ctx, "Skipped origins that could not be mapped to a domain",
			slog.Int("skipped", skipped),
			slog.Int("total", len(rows)))
	}

	if len(mapped) == 0 {
		return nil, apperrors.NewQueryError("map_domains",
			fmt.Errorf("%w: %d rows fetched for %d", ErrNoMappableOrigins, len(rows), yyyymm), false)
	}

	records := DedupeByDomain(mapped)

	d.logger.InfoContext(ctx, "Reduced origins to domains",
		slog.String("scope", string(scope)),
		slog.Int("yyyymm", yyyymm),
		slog.Int("origins", len(rows)),
		slog.Int("domains", len(records)))

	return records, nil
}

// DedupeByDomain stable-sorts records by rank and keeps the first record per
// domain, so each domain carries its minimum rank. The input is not modified.
func DedupeByDomain(records []DomainRecord) []DomainRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b DomainRecord) int {
		return cmp.Compare(a.Rank, b.Rank)
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]DomainRecord, 0, len(sorted))
	for _, record := range sorted {
		if _, ok := seen[record.Domain]; ok {
			continue
		}
		seen[record.Domain] = struct{}{}
		out = append(out, record)
	}
	return out
}
