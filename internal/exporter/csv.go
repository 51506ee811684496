package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"cruxcli/internal/crux"
)

// DomainRankHeader is the header row of every domain export
var DomainRankHeader = []string{"domain", "rank"}

// CSVWriter writes domain rankings as UTF-8 CSV without a BOM
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteDomainRanks writes records to path with a "domain,rank" header,
// truncating any existing file. Parent directories are created. It returns the
// number of data rows written.
func (w *CSVWriter) WriteDomainRanks(path string, records []crux.DomainRecord) (rows int, err error) {
	w.logger.Info("Writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	stream, err := w.CreateStreamWriter(path, DomainRankHeader)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil && err == nil {
			rows, err = 0, closeErr
		}
	}()

	for i, record := range records {
		if err := stream.WriteDomainRank(record); err != nil {
			return 0, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Rows(), nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// CreateStreamWriter creates path and writes headers to it
func (w *CSVWriter) CreateStreamWriter(path string, headers []string) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.rows++
	return nil
}

// WriteDomainRank writes one domain row
func (s *StreamWriter) WriteDomainRank(record crux.DomainRecord) error {
	return s.WriteRecord([]string{record.Domain, strconv.FormatInt(record.Rank, 10)})
}

// Rows returns the number of data rows written so far
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
