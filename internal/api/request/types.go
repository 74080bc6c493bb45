package request

import (
	"time"

	"github.com/taptowin/taptowin/internal/model"
)

// PlayerState is a full player state submitted by a client
type PlayerState struct {
	PlayerID      string    `json:"player_id"`
	Currency      int64     `json:"currency"`
	TotalClicks   int64     `json:"total_clicks"`
	OwnedPowerUps []string  `json:"owned_power_ups"`
	Achievements  []string  `json:"achievements"`
	BestStreak    int       `json:"best_streak"`
	SessionStart  time.Time `json:"session_start"`
	LastSyncedAt  time.Time `json:"last_synced_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToModel converts the request state to a model.PlayerState
func (p PlayerState) ToModel() *model.PlayerState {
	powerUps := make([]model.PowerUpID, len(p.OwnedPowerUps))
	for i, id := range p.OwnedPowerUps {
		powerUps[i] = model.PowerUpID(id)
	}
	achievements := make([]model.AchievementID, len(p.Achievements))
	for i, id := range p.Achievements {
		achievements[i] = model.AchievementID(id)
	}
	return &model.PlayerState{
		PlayerID:             model.PlayerID(p.PlayerID),
		Currency:             p.Currency,
		TotalClicks:          p.TotalClicks,
		OwnedPowerUps:        powerUps,
		UnlockedAchievements: achievements,
		BestStreak:           p.BestStreak,
		SessionStart:         p.SessionStart,
		LastSyncedAt:         p.LastSyncedAt,
		CreatedAt:            p.CreatedAt,
	}
}

// Snapshot is a locally cached state submitted for first-run migration
type Snapshot struct {
	State   PlayerState `json:"state"`
	SavedAt time.Time   `json:"saved_at"`
}

// ToModel converts the request snapshot to a model.Snapshot
func (s Snapshot) ToModel() *model.Snapshot {
	return &model.Snapshot{
		State:   *s.State.ToModel(),
		SavedAt: s.SavedAt,
	}
}

// CreatePlayerRequest is the request body for creating a player. PlayerID is
// optional; the server assigns one when omitted. Snapshot is optional
// local-only progress to migrate into the initial record.
type CreatePlayerRequest struct {
	PlayerID string    `json:"player_id,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// SavePlayerRequest is the request body for saving a player's state
type SavePlayerRequest struct {
	State PlayerState `json:"state"`
}
