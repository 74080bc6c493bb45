package storage

import (
	"context"

	"github.com/taptowin/taptowin/internal/model"
)

// Storage defines the interface for the durable remote player record store.
// Records are never deleted, only overwritten (a reset is a save of a zeroed
// state).
type Storage interface {
	// SavePlayer upserts the full player record
	SavePlayer(ctx context.Context, state *model.PlayerState) error

	// GetPlayer fetches a record, returning model.ErrPlayerNotFound on miss
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error)

	// ListPlayers returns every player record, ordered by currency
	// descending. Reads are not transactional versus concurrent saves.
	ListPlayers(ctx context.Context) ([]*model.PlayerState, error)

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error
}
