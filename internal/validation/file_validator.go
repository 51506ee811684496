package validation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"
)

// FileValidator checks export files after they are written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks the file has a .csv extension and starts with header.
// It returns the number of data rows.
func (v *FileValidator) ValidateCSVFile(path string, header []string) (int, error) {
	if err := v.ValidateFile(path); err != nil {
		return 0, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" {
		return 0, fmt.Errorf("file %s is not a CSV file (extension: %s)", path, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return v.countRows(file, path, header)
}

// ValidateArchive checks that path is a zip holding exactly one entry named
// entryName, and that the entry is a CSV starting with header. It returns the
// number of data rows.
func (v *FileValidator) ValidateArchive(path, entryName string, header []string) (int, error) {
	if err := v.ValidateFile(path); err != nil {
		return 0, err
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("archive %s is not a valid zip: %w", path, err)
	}
	defer r.Close()

	if len(r.File) != 1 {
		return 0, fmt.Errorf("archive %s holds %d entries, expected 1", path, len(r.File))
	}
	entry := r.File[0]
	if entry.Name != entryName {
		return 0, fmt.Errorf("archive %s holds %q, expected %q", path, entry.Name, entryName)
	}

	rc, err := entry.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open %s in %s: %w", entryName, path, err)
	}
	defer rc.Close()

	rows, err := v.countRows(rc, path, header)
	if err != nil {
		return 0, err
	}

	v.logger.Debug("Archive validated",
		slog.String("archive", path),
		slog.String("entry", entryName),
		slog.Int("rows", rows))
	return rows, nil
}

// countRows reads a CSV stream, checking the header and field counts
func (v *FileValidator) countRows(r io.Reader, path string, header []string) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	got, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%s is empty, expected header %v", path, header)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if !slices.Equal(got, header) {
		return 0, fmt.Errorf("%s has header %v, expected %v", path, got, header)
	}

	rows := 0
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return 0, fmt.Errorf("malformed CSV in %s: %w", path, err)
		}
		rows++
	}
}
