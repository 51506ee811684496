package crux

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	bigquery "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"cruxcli/internal/config"
	apperrors "cruxcli/internal/errors"
	"cruxcli/internal/infrastructure"
	"cruxcli/internal/security"
)

// RowSource returns the raw ranking rows for a month. An unpublished month
// yields an empty slice and a nil error.
type RowSource interface {
	FetchMonth(ctx context.Context, scope Scope, yyyymm int) ([]RankRecord, error)
}

// BigQuerySource runs the ranking queries against the public CrUX dataset
type BigQuerySource struct {
	service   *bigquery.Service
	projectID string
	location  string
	timeout   time.Duration
	pageSize  int64
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewBigQuerySource authenticates with creds and returns a source billed to
// cfg.ProjectID, or to the credentials' project when that is empty.
// Extra client options are appended after the credentials option.
func NewBigQuerySource(ctx context.Context, creds security.Credentials, cfg config.QueryConfig, opts ...option.ClientOption) (*BigQuerySource, error) {
	resolved, err := security.Resolve(ctx, creds, bigquery.BigqueryScope)
	if err != nil {
		return nil, err
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = resolved.ProjectID
	}
	if projectID == "" {
		return nil, apperrors.NewConfigurationError("authenticate",
			"no billing project: set query.project_id or use credentials that carry a project_id", nil)
	}

	clientOpts := append([]option.ClientOption{option.WithCredentials(resolved)}, opts...)
	service, err := bigquery.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.NewConfigurationError("authenticate", "failed to create BigQuery client", err)
	}

	return newBigQuerySource(service, projectID, cfg), nil
}

func newBigQuerySource(service *bigquery.Service, projectID string, cfg config.QueryConfig) *BigQuerySource {
	limit := rate.Inf
	if cfg.PagesPerSecond > 0 {
		limit = rate.Limit(cfg.PagesPerSecond)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultQueryTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}

	return &BigQuerySource{
		service:   service,
		projectID: projectID,
		location:  cfg.Location,
		timeout:   timeout,
		pageSize:  pageSize,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    infrastructure.WithComponent(nil, "bigquery"),
	}
}

// ProjectID returns the billing project queries run under
func (s *BigQuerySource) ProjectID() string {
	return s.projectID
}

// FetchMonth runs the scope's ranking query for yyyymm and reads every result page
func (s *BigQuerySource) FetchMonth(ctx context.Context, scope Scope, yyyymm int) ([]RankRecord, error) {
	if !scope.Valid() {
		return nil, apperrors.NewConfigurationError("fetch_month", fmt.Sprintf("unknown scope %q", scope), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.InfoContext(ctx, "Running ranking query",
		slog.String("scope", string(scope)),
		slog.Int("yyyymm", yyyymm),
		slog.String("project_id", s.projectID))

	req := &bigquery.QueryRequest{
		Query:         SQLFor(scope),
		UseLegacySql:  googleapi.Bool(false),
		ParameterMode: "POSITIONAL",
		QueryParameters: []*bigquery.QueryParameter{{
			ParameterType:  &bigquery.QueryParameterType{Type: "INT64"},
			ParameterValue: &bigquery.QueryParameterValue{Value: strconv.Itoa(yyyymm)},
		}},
		MaxResults: s.pageSize,
		TimeoutMs:  s.timeout.Milliseconds(),
		Location:   s.location,
	}

	resp, err := s.service.Jobs.Query(s.projectID, req).Context(ctx).Do()
	if err != nil {
		return nil, queryError("query", err)
	}

	records, err := appendRows(nil, scope, resp.Rows)
	if err != nil {
		return nil, err
	}

	complete, pageToken, jobRef := resp.JobComplete, resp.PageToken, resp.JobReference
	pages := 1
	for !complete || pageToken != "" {
		if jobRef == nil {
			return nil, apperrors.NewQueryError("get_query_results", stderrors.New("response has no job reference"), false)
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, queryError("get_query_results", err)
		}

		call := s.service.Jobs.GetQueryResults(jobRef.ProjectId, jobRef.JobId).
			MaxResults(s.pageSize).
			TimeoutMs(s.timeout.Milliseconds()).
			Context(ctx)
		if jobRef.Location != "" {
			call = call.Location(jobRef.Location)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, queryError("get_query_results", err)
		}
		if !page.JobComplete {
			s.logger.DebugContext(ctx, "Query still running", slog.String("job_id", jobRef.JobId))
			complete = false
			continue
		}

		records, err = appendRows(records, scope, page.Rows)
		if err != nil {
			return nil, err
		}
		complete, pageToken = true, page.PageToken
		pages++
	}

	s.logger.InfoContext(ctx, "Ranking query complete",
		slog.String("scope", string(scope)),
		slog.Int("yyyymm", yyyymm),
		slog.Int("rows", len(records)),
		slog.Int("pages", pages),
		slog.Duration("duration", time.Since(start)))

	return records, nil
}

// appendRows decodes result rows positionally according to scope
func appendRows(records []RankRecord, scope Scope, rows []*bigquery.TableRow) ([]RankRecord, error) {
	want := columnsFor(scope)
	for i, row := range rows {
		if row == nil || len(row.F) != want {
			return nil, apperrors.NewQueryError("decode_rows",
				fmt.Errorf("row %d: expected %d columns", i, want), false)
		}

		var record RankRecord
		cells := row.F
		if scope == ScopeCountry {
			record.CountryCode = cellString(cells[0])
			cells = cells[1:]
		}
		record.Origin = cellString(cells[0])

		rank, err := cellInt(cells[1])
		if err != nil {
			return nil, apperrors.NewQueryError("decode_rows", fmt.Errorf("row %d: %w", i, err), false)
		}
		record.Rank = rank

		records = append(records, record)
	}
	return records, nil
}

func cellString(cell *bigquery.TableCell) string {
	if cell == nil || cell.V == nil {
		return ""
	}
	if s, ok := cell.V.(string); ok {
		return s
	}
	return fmt.Sprint(cell.V)
}

func cellInt(cell *bigquery.TableCell) (int64, error) {
	if cell == nil || cell.V == nil {
		return 0, stderrors.New("rank is NULL")
	}
	switch v := cell.V.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid rank %q: %w", v, err)
		}
		return n, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected rank type %T", cell.V)
	}
}

// queryError wraps a backend failure, flagging transient ones as retryable
func queryError(step string, err error) error {
	return apperrors.NewQueryError(step, err, isTransient(err))
}

// isTransient reports network failures, timeouts, rate limiting and 5xx responses
func isTransient(err error) bool {
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		if gErr.Code == http.StatusTooManyRequests || gErr.Code >= http.StatusInternalServerError {
			return true
		}
		for _, item := range gErr.Errors {
			switch item.Reason {
			case "rateLimitExceeded", "quotaExceeded", "backendError":
				return true
			}
		}
		return false
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return stderrors.As(err, &netErr)
}
