package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileStore keeps one JSON file per record in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory (mode 0700) if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("history dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Save writes r as <id>.json with mode 0600.
func (s *FileStore) Save(ctx context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(s.recordPath(r.ID), data, 0o600); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	return nil
}

// List reads every record and returns the newest limit of them.
// Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		records = append(records, &r)
	}

	slices.SortFunc(records, func(a, b *Record) int { return b.StartedAt.Compare(a.StartedAt) })
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding record files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
