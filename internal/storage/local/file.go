package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taptowin/taptowin/internal/model"
)

// FileStore keeps one JSON snapshot file per player under a data directory
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Ensure FileStore implements the interface
var _ SnapshotStore = (*FileStore)(nil)

func (s *FileStore) path(id model.PlayerID) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", id))
}

func (s *FileStore) Load(ctx context.Context, id model.PlayerID) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrSnapshotNotFound
		}
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, model.ErrMalformedState
	}
	return &snap, nil
}

func (s *FileStore) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never corrupts the snapshot
	tmp := s.path(snap.State.PlayerID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(snap.State.PlayerID))
}

func (s *FileStore) Clear(ctx context.Context, id model.PlayerID) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
