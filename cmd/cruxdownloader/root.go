package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cruxcli/internal/config"
	apperrors "cruxcli/internal/errors"
	"cruxcli/internal/infrastructure"
)

// NewRootCmd creates the root command for cruxdownloader.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Export the monthly CrUX top-domains ranking",
		Long: `cruxdownloader downloads the Chrome UX Report popularity ranking from the
public BigQuery dataset, reduces origins to registrable domains keeping the best
rank of each, and writes the result to <data-dir>/global/crux-top-10m.zip.

Configuration is read from a YAML file (--config, CRUX_CONFIG, ./crux.yaml or
./configs/crux.yaml), then CRUX_* environment variables, then flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	cmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides paths.data_dir)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewMonthsCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	code := apperrors.NewErrorHandler(infrastructure.GetLogger(), os.Stderr, false).HandleError(ctx, err)
	infrastructure.CloseLogFile()
	os.Exit(code)
}

// loadConfig loads the configuration and applies persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError("load_config", "invalid configuration", err)
	}

	if f := cmd.Flags().Lookup("data-dir"); f != nil && f.Changed {
		cfg.Paths.DataDir = f.Value.String()
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		cfg.Logging.Level = f.Value.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigurationError("load_config", "invalid flag value", err)
	}
	return cfg, nil
}
