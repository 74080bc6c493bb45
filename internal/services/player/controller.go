package player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/dependencies/random"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/storage"
)

const playerIDLength = 16

// Controller implements the remote side of player persistence: creation
// (including first-run migration of a local snapshot), reads, reconciled
// saves, and resets
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new player Controller
func NewController(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger,
	}
}

// CreatePlayer creates the initial remote record for a player. When id is
// empty a fresh identifier is assigned. A provided snapshot is a one-time
// migration of pre-existing local-only progress: it becomes the initial
// record instead of a zeroed state. Malformed snapshots are rejected in
// favor of a fresh state rather than merged partially.
func (c *Controller) CreatePlayer(ctx context.Context, id model.PlayerID, snap *model.Snapshot) (*model.PlayerState, error) {
	if id == "" {
		id = model.PlayerID(c.random.String(playerIDLength, random.IDAlphabet))
	}

	if _, err := c.storage.GetPlayer(ctx, id); err == nil {
		return nil, model.ErrPlayerExists
	} else if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	now := c.clock.Now()
	state := model.NewPlayerState(id, now)

	migrated := false
	if snap != nil {
		candidate := snap.State.Clone()
		candidate.PlayerID = id
		if err := candidate.Validate(); err == nil {
			state = candidate
			state.SessionStart = now
			if state.CreatedAt.IsZero() {
				state.CreatedAt = now
			}
			migrated = true
		} else {
			c.logger.Warn("rejecting malformed migration snapshot",
				slog.String("player_id", string(id)),
			)
		}
	}

	state.LastSyncedAt = now
	if err := c.storage.SavePlayer(ctx, state); err != nil {
		return nil, err
	}

	c.logger.Info("player created",
		slog.String("player_id", string(id)),
		slog.Bool("migrated", migrated),
	)

	return state, nil
}

// GetPlayer fetches a player record
func (c *Controller) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	return c.storage.GetPlayer(ctx, id)
}

// SavePlayer persists the submitted state and returns the stored record.
// When the stored record is newer than the timestamp the client last loaded
// (the submitted LastSyncedAt), the two copies are reconciled with the
// monotonic max/union merge instead of last-write-wins, so neither side's
// recorded progress is discarded.
func (c *Controller) SavePlayer(ctx context.Context, incoming *model.PlayerState) (*model.PlayerState, error) {
	if err := incoming.Validate(); err != nil {
		return nil, err
	}

	state := incoming.Clone()

	stored, err := c.storage.GetPlayer(ctx, incoming.PlayerID)
	switch {
	case err == nil:
		if stored.LastSyncedAt.After(incoming.LastSyncedAt) {
			state = model.MergeStates(stored, incoming)
			c.logger.Info("reconciled divergent save",
				slog.String("player_id", string(incoming.PlayerID)),
				slog.Int64("total_clicks", state.TotalClicks),
			)
		}
		state.CreatedAt = stored.CreatedAt
	case errors.Is(err, model.ErrPlayerNotFound):
		return nil, err
	default:
		return nil, err
	}

	state.LastSyncedAt = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ResetPlayer clears a player's progress back to initial values. The record
// itself survives: the player keeps their identity and creation time.
func (c *Controller) ResetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	state, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	state.Reset(now)
	state.LastSyncedAt = now

	if err := c.storage.SavePlayer(ctx, state); err != nil {
		return nil, err
	}

	c.logger.Info("player reset", slog.String("player_id", string(id)))
	return state, nil
}
