package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"cruxcli/internal/config"
	"cruxcli/internal/crux"
	apperrors "cruxcli/internal/errors"
	"cruxcli/internal/exporter"
	"cruxcli/internal/infrastructure"
	"cruxcli/internal/security"
)

// bigQueryOptions are appended to the BigQuery client options
var bigQueryOptions []option.ClientOption

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the latest complete month",
		Long: `Export runs the ranking query for the latest complete calendar month (UTC)
and writes <data-dir>/global/crux-top-10m.zip, replacing any previous export.

Exactly one credential source is used, by precedence:
  --credentials-env   Application Default Credentials from the environment
  --credentials-json  inline service account key JSON
  --credentials-file  path to a service account key file

If the month is not published yet nothing is written and the command succeeds.

Examples:
  cruxdownloader export --credentials-file key.json
  cruxdownloader export --credentials-env --project my-billing-project`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("scope", "s", string(crux.ScopeGlobal), "Export scope: global or country")
	cmd.Flags().String("credentials-file", "", "Service account key file")
	cmd.Flags().String("credentials-json", "", "Service account key JSON")
	cmd.Flags().Bool("credentials-env", false, "Use Application Default Credentials")
	cmd.Flags().StringP("project", "p", "", "Billing project (overrides query.project_id)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyExportFlags(cmd, cfg)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return apperrors.NewConfigurationError("init_logger", "failed to initialize logger", err)
	}

	ctx := infrastructure.WithRunID(cmd.Context(), infrastructure.GenerateRunID())

	scope, err := crux.ParseScope(mustString(cmd, "scope"))
	if err != nil {
		return apperrors.NewConfigurationError("parse_scope", "invalid --scope", err)
	}

	tel, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, getVersion(), cmd.ErrOrStderr(), logger)
	if err != nil {
		return apperrors.NewConfigurationError("init_telemetry", "failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(logger, err).Warn("Telemetry shutdown failed")
		}
	}()

	manager, err := newManager(cfg, exporter.WithTelemetry(tel), exporter.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Starting export",
		slog.String("scope", string(scope)),
		slog.String("data_dir", manager.Paths().DataDir),
		slog.String("month", manager.LatestCompleteMonth().String()))

	var result *exporter.ExportResult
	switch scope {
	case crux.ScopeCountry:
		result, err = manager.ExportCountry(ctx)
	default:
		var creds security.Credentials
		creds, err = security.SelectCredentials(cfg.Credentials.File, cfg.Credentials.JSON, cfg.Credentials.UseEnv)
		if err == nil {
			result, err = manager.ExportGlobalWithCredentials(ctx, creds, cfg.Query, bigQueryOptions...)
		}
	}

	if metricsErr := tel.WriteMetrics(); metricsErr != nil {
		infrastructure.WithError(logger, metricsErr).WarnContext(ctx, "Failed to write metrics")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Empty {
		fmt.Fprintf(out, "No data published for %s yet; nothing written\n", result.Month)
		return nil
	}
	fmt.Fprintf(out, "Exported %d domains for %s to %s (%d bytes)\n", result.Records, result.Month, result.ArchivePath, result.ArchiveBytes)
	return nil
}

// applyExportFlags overlays credential and project flags onto cfg.
// Any credential flag replaces the configured credentials entirely.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("credentials-file") || flags.Changed("credentials-json") || flags.Changed("credentials-env") {
		useEnv, _ := flags.GetBool("credentials-env")
		cfg.Credentials = config.CredentialsConfig{
			File:   mustString(cmd, "credentials-file"),
			JSON:   mustString(cmd, "credentials-json"),
			UseEnv: useEnv,
		}
	}
	if flags.Changed("project") {
		cfg.Query.ProjectID = mustString(cmd, "project")
	}
}

func newManager(cfg *config.Config, opts ...exporter.Option) (*exporter.Manager, error) {
	paths, err := config.NewPaths(cfg.Paths.DataDir)
	if err != nil {
		return nil, apperrors.NewConfigurationError("resolve_paths", "invalid data directory", err)
	}
	return exporter.NewManager(paths, opts...)
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
