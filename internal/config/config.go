package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Query       QueryConfig       `yaml:"query" envconfig:"QUERY"`
	Credentials CredentialsConfig `yaml:"credentials" envconfig:"CREDENTIALS"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file,required_if=Output both"`
}

// QueryConfig contains BigQuery settings
type QueryConfig struct {
	// ProjectID is the billing project. Empty means the project of the credentials.
	ProjectID      string        `yaml:"project_id" envconfig:"PROJECT_ID"`
	Location       string        `yaml:"location" envconfig:"LOCATION"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	PageSize       int64         `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"gt=0"`
	PagesPerSecond float64       `yaml:"pages_per_second" envconfig:"PAGES_PER_SECOND" validate:"gt=0"`
}

// CredentialsConfig holds the three mutually exclusive credential inputs.
// See security.SelectCredentials for precedence.
type CredentialsConfig struct {
	File   string `yaml:"file" envconfig:"FILE"`
	JSON   string `yaml:"json" envconfig:"JSON"`
	UseEnv bool   `yaml:"use_env" envconfig:"USE_ENV"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	// MetricsFile is a node-exporter textfile written at the end of a run. Empty disables it.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// CRUX_* environment variables, in that order of increasing precedence.
// An empty configFile falls back to CRUX_CONFIG and then to well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"crux.yaml",
		"configs/crux.yaml",
		UserConfigFile(),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// UserConfigFile returns the per-user config file under the XDG config home
func UserConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "crux.yaml")
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: "logs/crux.log",
		},
		Query: QueryConfig{
			Timeout:        DefaultQueryTimeout,
			PageSize:       DefaultPageSize,
			PagesPerSecond: DefaultPagesPerSecond,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}
