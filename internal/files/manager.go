package files

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides file management operations rooted at the data directory
type Manager struct {
	root string
}

// NewManager creates a new file manager; relative paths resolve against root
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// RemoveIfExists deletes a file, reporting whether it was present.
// A missing file is not an error.
func (m *Manager) RemoveIfExists(path string) (bool, error) {
	fullPath := m.resolvePath(path)

	err := os.Remove(fullPath)
	switch {
	case err == nil:
		slog.Info("Deleted file", slog.String("path", fullPath))
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to delete %s: %w", fullPath, err)
	}
}

// RemoveAll deletes every given file that exists and stops at the first failure
func (m *Manager) RemoveAll(paths ...string) ([]string, error) {
	var removed []string
	for _, path := range paths {
		ok, err := m.RemoveIfExists(path)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, m.resolvePath(path))
		}
	}
	return removed, nil
}

// GetFileSize returns the size of a file in bytes
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.resolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// resolvePath resolves a path relative to the data directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.root, path)
}
