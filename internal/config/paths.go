package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the on-disk layout rooted at the data directory.
// This is the single source of truth for export file locations.
type Paths struct {
	DataDir    string
	GlobalDir  string
	CountryDir string

	// Well-known export files
	GlobalCSV string
	GlobalZIP string
}

// NewPaths returns the layout for dataDir. Relative directories are resolved
// against the working directory.
func NewPaths(dataDir string) (*Paths, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory %s: %w", dataDir, err)
	}

	globalDir := filepath.Join(abs, GlobalDirName)
	globalCSV := filepath.Join(globalDir, GlobalFileName)

	return &Paths{
		DataDir:    abs,
		GlobalDir:  globalDir,
		CountryDir: filepath.Join(abs, CountryDirName),
		GlobalCSV:  globalCSV,
		GlobalZIP:  ArchivePath(globalCSV),
	}, nil
}

// EnsureDirectories creates the data directory and both scope directories.
// Existing directories are not an error.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.GlobalDir,
		p.CountryDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// ArchivePath maps a CSV path to its zip archive path
func ArchivePath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".zip"
}
