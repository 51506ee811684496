// Package exporter writes domain rankings to the local data directory.
//
// This package contains three main components:
//
// CSVWriter: writes "domain,rank" CSV files, UTF-8 without a BOM.
//
// Archiver: compresses a CSV into a zip holding a single deflated entry.
//
// Manager: owns the <data>/global and <data>/country layout, picks the latest
// complete month and runs an export end to end. A global export removes the
// previous files, fetches the month, and leaves exactly one archive.
//
// Example usage:
//
//	paths, _ := config.NewPaths("data")
//	manager, err := exporter.NewManager(paths, exporter.WithTelemetry(tel))
//	if err != nil {
//	    return err
//	}
//	result, err := manager.ExportGlobalWithCredentials(ctx, creds, cfg.Query)
package exporter
