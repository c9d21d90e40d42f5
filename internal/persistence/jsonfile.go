package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// JSONFileStore keeps the ledger snapshot in a single JSON file. Saves are
// atomic: the snapshot is written to a temp file first and renamed over the
// previous one, so a crash mid-write never corrupts the last good state.
type JSONFileStore struct {
	path string
	now  func() time.Time
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{
		path: path,
		now:  time.Now,
	}
}

// Load reads the snapshot from disk. A missing file is not an error: the
// ledger simply starts empty.
func (s *JSONFileStore) Load(ctx context.Context) (Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot file: %w", err)
	}
	return snap, nil
}

func (s *JSONFileStore) Save(ctx context.Context, snap Snapshot) error {
	snap.Meta.Storage = "json_snapshot"
	snap.Meta.Version = SnapshotVersion
	snap.Meta.Timestamp = s.now()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
