package local

import (
	"context"
	"sync"

	"github.com/taptowin/taptowin/internal/model"
)

// MemoryStore is an in-memory snapshot store for tests
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[model.PlayerID]*model.Snapshot
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[model.PlayerID]*model.Snapshot),
	}
}

// Ensure MemoryStore implements the interface
var _ SnapshotStore = (*MemoryStore)(nil)

func (s *MemoryStore) Load(ctx context.Context, id model.PlayerID) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, model.ErrSnapshotNotFound
	}
	copied := model.Snapshot{State: *snap.State.Clone(), SavedAt: snap.SavedAt}
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := model.Snapshot{State: *snap.State.Clone(), SavedAt: snap.SavedAt}
	s.snapshots[snap.State.PlayerID] = &copied
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
	return nil
}
