// Package files provides file system operations and discovery utilities
// for the export data directory.
//
// Manager: deletes stale outputs and reports file sizes. Relative paths
// resolve against the data directory.
//
// Discovery: lists CSV files and zip archives in a scope directory, used to
// report archives and CSVs orphaned by an interrupted run.
//
// Example usage:
//
//	manager := files.NewManager("/srv/crux")
//	removed, err := manager.RemoveAll("global/crux-top-10m.csv", "global/crux-top-10m.zip")
//
//	discovery := files.NewDiscovery("/srv/crux")
//	orphans, err := discovery.FindCSVFiles("global")
package files
