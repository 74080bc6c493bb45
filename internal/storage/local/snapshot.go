package local

import (
	"context"

	"github.com/taptowin/taptowin/internal/model"
)

// SnapshotStore is the fast local tier of the two-tier persistence model.
// Every mutation is mirrored here synchronously, so a crash loses at most
// the pending remote write. It also holds pre-existing local-only progress
// awaiting first-run migration to the remote store.
type SnapshotStore interface {
	// Load returns the cached snapshot for a player, or
	// model.ErrSnapshotNotFound
	Load(ctx context.Context, id model.PlayerID) (*model.Snapshot, error)

	// Save overwrites the cached snapshot
	Save(ctx context.Context, snap *model.Snapshot) error

	// Clear removes the cached snapshot. Clearing a missing snapshot is
	// not an error.
	Clear(ctx context.Context, id model.PlayerID) error
}
