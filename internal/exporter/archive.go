package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"cruxcli/internal/config"
	"cruxcli/internal/infrastructure"
)

// Archiver compresses export files into single-entry zip archives
type Archiver struct {
	level  int
	logger *slog.Logger
}

// NewArchiver creates an archiver using the default deflate level
func NewArchiver(logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{level: flate.DefaultCompression, logger: logger}
}

// ZipFile writes src into a zip next to it with the same base name and a .zip
// extension. The archive holds one deflated entry named after src's base name.
// src is left in place and a partial archive is removed on failure.
func (a *Archiver) ZipFile(src string) (string, error) {
	dst := config.ArchivePath(src)
	if err := a.writeArchive(src, dst); err != nil {
		return "", err
	}

	a.logger.Info("Created archive",
		slog.String("source", src),
		slog.String("archive", dst))
	return dst, nil
}

func (a *Archiver) writeArchive(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close archive %s: %w", dst, closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(dst); rmErr != nil {
				infrastructure.WithError(a.logger, rmErr).Warn("Failed to remove partial archive",
					slog.String("path", dst))
			}
		}
	}()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, a.level)
	})

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build zip header: %w", err)
	}
	header.Name = filepath.Base(src)
	header.Method = zip.Deflate

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", header.Name, err)
	}
	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive %s: %w", dst, err)
	}
	return nil
}
