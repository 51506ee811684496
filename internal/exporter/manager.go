package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"cruxcli/internal/config"
	"cruxcli/internal/crux"
	apperrors "cruxcli/internal/errors"
	"cruxcli/internal/files"
	"cruxcli/internal/infrastructure"
	"cruxcli/internal/security"
	"cruxcli/internal/validation"
)

// ErrCountryExportNotImplemented is returned by ExportCountry
var ErrCountryExportNotImplemented = apperrors.NewNotImplementedError("export_country",
	"country-level export is not implemented")

// DomainRankSource produces the deduplicated domain ranking for a month
type DomainRankSource interface {
	DumpMonthToDomainRanks(ctx context.Context, scope crux.Scope, yyyymm int) ([]crux.DomainRecord, error)
}

// ExportResult describes a finished export run
type ExportResult struct {
	Scope       crux.Scope
	Month       crux.YearMonth
	Records     int
	ArchivePath string
	// ArchiveBytes is the size of the archive on disk
	ArchiveBytes int64
	Empty        bool
	Duration     time.Duration
}

// Manager owns the on-disk export layout and runs exports into it
type Manager struct {
	paths     *config.Paths
	files     *files.Manager
	discovery *files.Discovery
	csv       *CSVWriter
	archiver  *Archiver
	validator *validation.FileValidator
	clock     func() time.Time
	telemetry *infrastructure.Telemetry
	metrics   *infrastructure.ExportMetrics
	logger    *slog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the clock used to pick the export month
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithTelemetry records spans and metrics on tel
func WithTelemetry(tel *infrastructure.Telemetry) Option {
	return func(m *Manager) { m.telemetry = tel }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager rooted at paths.DataDir
func NewManager(paths *config.Paths, opts ...Option) (*Manager, error) {
	m := &Manager{
		paths:     paths,
		files:     files.NewManager(paths.DataDir),
		discovery: files.NewDiscovery(paths.DataDir),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.telemetry == nil {
		m.telemetry = infrastructure.NoopTelemetry()
	}
	m.logger = infrastructure.WithComponent(m.logger, "exporter")
	m.csv = NewCSVWriter(m.logger)
	m.archiver = NewArchiver(m.logger)
	m.validator = validation.NewFileValidator(m.logger)

	metrics, err := infrastructure.NewExportMetrics(m.telemetry.Meter)
	if err != nil {
		return nil, err
	}
	m.metrics = metrics
	return m, nil
}

// Paths returns the export layout
func (m *Manager) Paths() *config.Paths {
	return m.paths
}

// LatestCompleteMonth returns the calendar month before the current UTC month
func (m *Manager) LatestCompleteMonth() crux.YearMonth {
	return crux.YearMonthOf(m.clock().UTC()).AddMonths(-1)
}

// ValidMonths lists every published month from MinYearMonth through the
// latest complete month, oldest first
func (m *Manager) ValidMonths() []crux.YearMonth {
	latest := m.LatestCompleteMonth()
	var months []crux.YearMonth
	for ym := crux.MinYearMonth; !latest.Before(ym); ym = ym.AddMonths(1) {
		months = append(months, ym)
	}
	return months
}

// ExportGlobalWithCredentials authenticates with creds and exports the
// latest complete month of the global ranking
func (m *Manager) ExportGlobalWithCredentials(ctx context.Context, creds security.Credentials, cfg config.QueryConfig, opts ...option.ClientOption) (*ExportResult, error) {
	source, err := crux.NewBigQuerySource(ctx, creds, cfg, opts...)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "Authenticated to BigQuery", slog.String("project_id", source.ProjectID()))

	downloader := crux.NewDownloader(source, crux.NewPublicSuffixExtractor(), m.logger).
		WithRowCounter(m.metrics.RowsFetched)
	return m.ExportGlobal(ctx, downloader)
}

// ExportGlobal writes the latest complete month of the global ranking to
// global/crux-top-10m.zip. Any previous CSV or archive is removed first. An
// unpublished month leaves no files and returns a result with Empty set. If
// archiving fails the CSV is left in place.
func (m *Manager) ExportGlobal(ctx context.Context, source DomainRankSource) (*ExportResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	month := m.LatestCompleteMonth()

	ctx, span := m.telemetry.Tracer.Start(ctx, "export.global",
		trace.WithAttributes(
			attribute.String("crux.scope", string(crux.ScopeGlobal)),
			attribute.Int("crux.yyyymm", month.Int()),
		))
	defer span.End()

	start := time.Now()
	result, err := m.exportGlobal(ctx, source, month)
	duration := time.Since(start)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case result.Empty:
		outcome = "empty"
	}
	m.recordRun(ctx, crux.ScopeGlobal, outcome, duration)

	if err != nil {
		infrastructure.WithError(m.logger, err).ErrorContext(ctx, "Global export failed",
			slog.String("month", month.String()))
		return nil, err
	}

	result.Duration = duration
	span.SetAttributes(attribute.Int("crux.records", result.Records))
	if !result.Empty {
		m.metrics.DomainsWritten.Add(ctx, int64(result.Records), scopeAttr(crux.ScopeGlobal))
		m.metrics.LastSuccessUnixTS.Record(ctx, m.clock().Unix(), scopeAttr(crux.ScopeGlobal))
	}

	m.logger.InfoContext(ctx, "Global export finished",
		slog.String("month", month.String()),
		slog.Int("records", result.Records),
		slog.Bool("empty", result.Empty),
		slog.String("archive", result.ArchivePath),
		slog.Int64("archive_bytes", result.ArchiveBytes),
		slog.Duration("duration", duration))
	return result, nil
}

func (m *Manager) exportGlobal(ctx context.Context, source DomainRankSource, month crux.YearMonth) (*ExportResult, error) {
	if err := m.paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewFilesystemError("ensure_directories", m.paths.DataDir, err)
	}

	removed, err := m.files.RemoveAll(m.paths.GlobalCSV, m.paths.GlobalZIP)
	if err != nil {
		return nil, apperrors.NewFilesystemError("remove_stale", m.paths.GlobalDir, err)
	}
	if len(removed) > 0 {
		m.logger.InfoContext(ctx, "Removed previous export files", slog.Any("paths", removed))
	}

	m.logger.InfoContext(ctx, "Fetching global data", slog.Int("yyyymm", month.Int()))
	records, err := source.DumpMonthToDomainRanks(ctx, crux.ScopeGlobal, month.Int())
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Scope: crux.ScopeGlobal, Month: month, Records: len(records)}
	if len(records) == 0 {
		m.logger.InfoContext(ctx, "No data published for month yet, nothing written",
			slog.String("month", month.String()))
		result.Empty = true
		return result, nil
	}

	written, err := m.csv.WriteDomainRanks(m.paths.GlobalCSV, records)
	if err != nil {
		return nil, apperrors.NewFilesystemError("write_csv", m.paths.GlobalCSV, err)
	}

	if err := m.verifyCSV(written); err != nil {
		return nil, apperrors.NewFilesystemError("verify_csv", m.paths.GlobalCSV, err)
	}

	archive, err := m.archiver.ZipFile(m.paths.GlobalCSV)
	if err != nil {
		return nil, apperrors.NewFilesystemError("archive", m.paths.GlobalZIP, err)
	}

	if err := m.verifyArchive(archive, written); err != nil {
		if _, rmErr := m.files.RemoveIfExists(archive); rmErr != nil {
			infrastructure.WithError(m.logger, rmErr).WarnContext(ctx, "Failed to remove unverified archive")
		}
		return nil, apperrors.NewFilesystemError("verify_archive", archive, err)
	}

	if _, err := m.files.RemoveIfExists(m.paths.GlobalCSV); err != nil {
		return nil, apperrors.NewFilesystemError("remove_csv", m.paths.GlobalCSV, err)
	}

	size, err := m.files.GetFileSize(archive)
	if err != nil {
		return nil, apperrors.NewFilesystemError("stat_archive", archive, err)
	}
	result.ArchivePath = archive
	result.ArchiveBytes = size
	return result, nil
}

// verifyCSV checks the CSV on disk holds every written row before it is archived
func (m *Manager) verifyCSV(want int) error {
	rows, err := m.validator.ValidateCSVFile(m.paths.GlobalCSV, DomainRankHeader)
	if err != nil {
		return err
	}
	if rows != want {
		return fmt.Errorf("CSV holds %d rows, wrote %d", rows, want)
	}
	return nil
}

// verifyArchive checks the archive holds the CSV with every written row
func (m *Manager) verifyArchive(archive string, want int) error {
	rows, err := m.validator.ValidateArchive(archive, filepath.Base(m.paths.GlobalCSV), DomainRankHeader)
	if err != nil {
		return err
	}
	if rows != want {
		return fmt.Errorf("archive holds %d rows, wrote %d", rows, want)
	}
	return nil
}

// ExportCountry is not implemented. It touches no files and always returns
// ErrCountryExportNotImplemented.
func (m *Manager) ExportCountry(ctx context.Context) (*ExportResult, error) {
	m.logger.WarnContext(ctx, "Country export requested but not implemented")
	m.recordRun(ctx, crux.ScopeCountry, "not_implemented", 0)
	return nil, ErrCountryExportNotImplemented
}

// ScopeStatus lists the files present in one scope directory
type ScopeStatus struct {
	Scope    crux.Scope
	Dir      string
	Archives []files.FileInfo
	// CSVs left behind by a run that failed between writing and archiving
	Orphans []files.FileInfo
}

// Status reports the archives and orphaned CSVs in each scope directory
func (m *Manager) Status() ([]ScopeStatus, error) {
	scopes := []struct {
		scope crux.Scope
		dir   string
	}{
		{crux.ScopeGlobal, m.paths.GlobalDir},
		{crux.ScopeCountry, m.paths.CountryDir},
	}

	statuses := make([]ScopeStatus, 0, len(scopes))
	for _, s := range scopes {
		archives, err := m.discovery.FindArchives(s.dir)
		if err != nil {
			return nil, apperrors.NewFilesystemError("status", s.dir, err)
		}
		orphans, err := m.discovery.FindCSVFiles(s.dir)
		if err != nil {
			return nil, apperrors.NewFilesystemError("status", s.dir, err)
		}
		statuses = append(statuses, ScopeStatus{
			Scope:    s.scope,
			Dir:      s.dir,
			Archives: archives,
			Orphans:  orphans,
		})
	}
	return statuses, nil
}

func (m *Manager) recordRun(ctx context.Context, scope crux.Scope, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("scope", string(scope)),
		attribute.String("outcome", outcome),
	)
	m.metrics.ExportRuns.Add(ctx, 1, attrs)
	if duration > 0 {
		m.metrics.ExportDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

func scopeAttr(scope crux.Scope) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("scope", string(scope)))
}
