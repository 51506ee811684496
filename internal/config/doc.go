// Package config provides configuration management for the CrUX exporter.
// It loads configuration from multiple sources, validates it, and owns the
// on-disk layout of the data directory.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Command line flags (applied by the caller)
//  2. Environment variables
//  3. YAML configuration file
//  4. Default values
//
// # Environment Variables
//
// All environment variables follow the pattern CRUX_<SECTION>_<FIELD>:
//
//	CRUX_PATHS_DATA_DIR=/srv/crux
//	CRUX_LOGGING_LEVEL=debug
//	CRUX_QUERY_PROJECT_ID=my-billing-project
//	CRUX_CREDENTIALS_FILE=/etc/crux/sa.json
//	CRUX_CREDENTIALS_USE_ENV=true
//	CRUX_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/crux.prom
//
// # Data Layout
//
//	<data_dir>/
//	  ├── global/
//	  │   └── crux-top-10m.zip   (crux-top-10m.csv while an export runs)
//	  └── country/               (reserved)
package config
