package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"CRUX_CONFIG",
	"CRUX_PATHS_DATA_DIR",
	"CRUX_LOGGING_LEVEL", "CRUX_LOGGING_OUTPUT", "CRUX_LOGGING_FILE_PATH",
	"CRUX_QUERY_PROJECT_ID", "CRUX_QUERY_TIMEOUT", "CRUX_QUERY_PAGE_SIZE",
	"CRUX_CREDENTIALS_FILE", "CRUX_CREDENTIALS_JSON", "CRUX_CREDENTIALS_USE_ENV",
	"CRUX_TELEMETRY_TRACE_EXPORTER", "CRUX_TELEMETRY_METRICS_FILE",
}

// clearEnv blanks every CRUX_* variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		os.Unsetenv(envVar)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crux.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T)
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultDataDir, cfg.Paths.DataDir)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, DefaultQueryTimeout, cfg.Query.Timeout)
				assert.Equal(t, int64(DefaultPageSize), cfg.Query.PageSize)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.False(t, cfg.Credentials.UseEnv)
			},
		},
		{
			name: "environment variables override defaults",
			setupEnv: func(t *testing.T) {
				t.Setenv("CRUX_PATHS_DATA_DIR", "/srv/crux")
				t.Setenv("CRUX_LOGGING_LEVEL", "debug")
				t.Setenv("CRUX_QUERY_PROJECT_ID", "billing-project")
				t.Setenv("CRUX_QUERY_TIMEOUT", "90s")
				t.Setenv("CRUX_CREDENTIALS_USE_ENV", "true")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/srv/crux", cfg.Paths.DataDir)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "billing-project", cfg.Query.ProjectID)
				assert.Equal(t, 90*time.Second, cfg.Query.Timeout)
				assert.True(t, cfg.Credentials.UseEnv)
			},
		},
		{
			name: "file values overlay defaults",
			fileContent: `
paths:
  data_dir: /var/lib/crux
query:
  timeout: 5m
  page_size: 5000
credentials:
  file: /etc/crux/sa.json
telemetry:
  trace_exporter: stdout
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/var/lib/crux", cfg.Paths.DataDir)
				assert.Equal(t, 5*time.Minute, cfg.Query.Timeout)
				assert.Equal(t, int64(5000), cfg.Query.PageSize)
				assert.Equal(t, "/etc/crux/sa.json", cfg.Credentials.File)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				// untouched sections keep defaults
				assert.Equal(t, DefaultPagesPerSecond, cfg.Query.PagesPerSecond)
			},
		},
		{
			name: "env takes precedence over file",
			setupEnv: func(t *testing.T) {
				t.Setenv("CRUX_PATHS_DATA_DIR", "/from/env")
			},
			fileContent: "paths:\n  data_dir: /from/file\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/from/env", cfg.Paths.DataDir)
			},
		},
		{
			name: "invalid log level fails validation",
			setupEnv: func(t *testing.T) {
				t.Setenv("CRUX_LOGGING_LEVEL", "verbose")
			},
			wantErr: true,
		},
		{
			name: "invalid trace exporter fails validation",
			setupEnv: func(t *testing.T) {
				t.Setenv("CRUX_TELEMETRY_TRACE_EXPORTER", "otlp")
			},
			wantErr: true,
		},
		{
			name:        "malformed yaml",
			fileContent: "paths: [unclosed",
			wantErr:     true,
		},
		{
			name: "unparsable env duration",
			setupEnv: func(t *testing.T) {
				t.Setenv("CRUX_QUERY_TIMEOUT", "soon")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.setupEnv != nil {
				tt.setupEnv(t)
			}

			var configFile string
			if tt.fileContent != "" {
				configFile = writeConfigFile(t, tt.fileContent)
			}

			cfg, err := Load(configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "paths:\n  data_dir: /via/crux_config\n")
	t.Setenv("CRUX_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/via/crux_config", cfg.Paths.DataDir)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.Paths.DataDir = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Query.Timeout = 0 }, wantErr: true},
		{name: "zero page size", mutate: func(c *Config) { c.Query.PageSize = 0 }, wantErr: true},
		{name: "file output without path", mutate: func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, wantErr: true},
		{name: "console output without path", mutate: func(c *Config) {
			c.Logging.Output = "console"
			c.Logging.FilePath = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserConfigFile(t *testing.T) {
	path := UserConfigFile()
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "crux.yaml", filepath.Base(path))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(path)))
}
