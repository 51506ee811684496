package config

import "time"

// Application constants
const (
	AppName = "cruxdownloader"

	// EnvPrefix namespaces all environment variables, e.g. CRUX_PATHS_DATA_DIR
	EnvPrefix = "CRUX"

	DefaultDataDir  = "data"
	DefaultLogLevel = "info"

	// Data layout under the data directory
	GlobalDirName  = "global"
	CountryDirName = "country"
	GlobalFileName = "crux-top-10m.csv"

	// BigQuery
	DefaultQueryTimeout   = 10 * time.Minute
	DefaultPageSize       = 100000
	DefaultPagesPerSecond = 5.0
)
