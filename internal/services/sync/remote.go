package sync

import (
	"context"

	"github.com/taptowin/taptowin/internal/model"
)

// RemoteStore is the durable remote side of the two-tier persistence model.
// The player service implements it directly for embedded use; the CLI
// implements it over the HTTP API.
type RemoteStore interface {
	// CreatePlayer creates the initial remote record, optionally migrating
	// a pre-existing local-only snapshot
	CreatePlayer(ctx context.Context, id model.PlayerID, snap *model.Snapshot) (*model.PlayerState, error)

	// GetPlayer fetches the remote record, model.ErrPlayerNotFound on miss
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error)

	// SavePlayer persists the state and returns the stored record,
	// reconciled if the remote side had newer data
	SavePlayer(ctx context.Context, state *model.PlayerState) (*model.PlayerState, error)

	// ResetPlayer clears the remote record to initial values
	ResetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error)
}
