package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// FileStore implements Store using local file storage.
// This is suitable for single-instance deployments.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewFileStore creates a new local file-based store.
// The filePath specifies where the snapshot artifact will be stored.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{
		filePath: filePath,
	}
}

// Load retrieves the snapshot artifact from the local file.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.filePath == "" {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return data, nil
}

// Save stores the snapshot artifact to the local file. The write goes
// through a temp file and rename so readers never observe a partial
// artifact.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filePath == "" {
		return nil
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := atomic.WriteFile(s.filePath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
