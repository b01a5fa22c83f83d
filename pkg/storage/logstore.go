// Package storage persists run output: per-job log files and manifest
// copies, locally by default and optionally mirrored to S3.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LogStore saves a named blob produced by a run and returns a reference
// (path or URL) to where it landed.
type LogStore interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// LocalLogStore writes blobs under a base directory on the local filesystem.
type LocalLogStore struct {
	basePath string
}

// NewLocalLogStore creates the base directory if needed.
func NewLocalLogStore(basePath string) (*LocalLogStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &LocalLogStore{basePath: basePath}, nil
}

// Store writes the blob and returns its path.
func (l *LocalLogStore) Store(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
