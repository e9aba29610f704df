package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage writes job outputs under a base directory on the local filesystem.
type Storage struct {
	basePath string
}

// NewStorage creates the base directory if needed and returns a Storage
// rooted at it.
func NewStorage(basePath string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", basePath, err)
	}

	return &Storage{basePath: basePath}, nil
}

// BasePath returns the directory outputs are written under.
func (s *Storage) BasePath() string {
	return s.basePath
}

// Save stores src as filename inside subdir (relative to the base path) and
// returns the written path. An existing file is replaced. The data is
// written to a temporary file and renamed into place, so concurrent saves to
// the same name leave exactly one writer's content.
func (s *Storage) Save(ctx context.Context, subdir, filename string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dstPath := filepath.Join(dir, filename)
	tmp, err := os.CreateTemp(dir, "."+filename+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dstPath, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save file %s: %w", dstPath, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close file %s: %w", dstPath, err)
	}

	// CreateTemp uses 0600.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set mode on %s: %w", dstPath, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move file into %s: %w", dstPath, err)
	}

	return dstPath, nil
}
