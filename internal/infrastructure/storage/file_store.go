// Package storage provides the seen-ledger persisters.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

// FileStore persists the seen ledger as a JSON document. Writes go to a
// temp file first and are renamed into place, so a concurrent reader never
// observes a partial snapshot.
type FileStore struct {
	path string
}

var _ ports.SeenPersister = (*FileStore)(nil)

// NewFileStore records the target path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type fileSnapshot struct {
	SeenArticles []domain.SeenEntry `json:"seen_articles"`
	LastUpdated  time.Time          `json:"last_updated"`
}

// Load reads the snapshot; a missing file yields an empty ledger.
func (f *FileStore) Load(ctx context.Context) ([]domain.SeenEntry, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var snap fileSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return snap.SeenArticles, nil
}

// Save writes the ledger atomically.
func (f *FileStore) Save(ctx context.Context, entries []domain.SeenEntry) error {
	snap := fileSnapshot{
		SeenArticles: entries,
		LastUpdated:  time.Now().UTC(),
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
