package model

import (
	"slices"
	"time"
)

// PlayerID uniquely identifies a player across the system
type PlayerID string

// PlayerState is the unit of persistence and reconciliation. Every counter
// except SessionStart and LastSyncedAt is monotonically non-decreasing until
// an explicit reset.
type PlayerState struct {
	PlayerID             PlayerID
	Currency             int64
	TotalClicks          int64
	OwnedPowerUps        []PowerUpID
	UnlockedAchievements []AchievementID
	BestStreak           int
	SessionStart         time.Time
	LastSyncedAt         time.Time
	CreatedAt            time.Time
}

// Snapshot is the locally cached copy of a PlayerState. SavedAt is the local
// write timestamp used as the reconciliation tie-breaker against the remote
// record's LastSyncedAt.
type Snapshot struct {
	State   PlayerState
	SavedAt time.Time
}

// NewPlayerState creates a zeroed state for a player first seen at now
func NewPlayerState(id PlayerID, now time.Time) *PlayerState {
	return &PlayerState{
		PlayerID:     id,
		SessionStart: now,
		CreatedAt:    now,
	}
}

// Reset clears all progress back to initial values, keeping the player's
// identity and creation time, and starts a fresh session
func (p *PlayerState) Reset(now time.Time) {
	p.Currency = 0
	p.TotalClicks = 0
	p.OwnedPowerUps = nil
	p.UnlockedAchievements = nil
	p.BestStreak = 0
	p.SessionStart = now
}

// Clone returns a deep copy of the state
func (p *PlayerState) Clone() *PlayerState {
	c := *p
	c.OwnedPowerUps = slices.Clone(p.OwnedPowerUps)
	c.UnlockedAchievements = slices.Clone(p.UnlockedAchievements)
	return &c
}

// OwnsPowerUp reports whether the given power-up has been purchased
func (p *PlayerState) OwnsPowerUp(id PowerUpID) bool {
	return slices.Contains(p.OwnedPowerUps, id)
}

// HasAchievement reports whether the given achievement has been unlocked
func (p *PlayerState) HasAchievement(id AchievementID) bool {
	return slices.Contains(p.UnlockedAchievements, id)
}

// AddPowerUp records ownership of a power-up. Adding an already-owned id is
// a no-op so ownership stays a set.
func (p *PlayerState) AddPowerUp(id PowerUpID) {
	if !p.OwnsPowerUp(id) {
		p.OwnedPowerUps = append(p.OwnedPowerUps, id)
	}
}

// AddAchievement records an achievement unlock. Unlocking is irreversible
// and idempotent.
func (p *PlayerState) AddAchievement(id AchievementID) {
	if !p.HasAchievement(id) {
		p.UnlockedAchievements = append(p.UnlockedAchievements, id)
	}
}

// Validate checks structural invariants of a state loaded from a cache or
// the remote store. A state failing validation must not be merged.
func (p *PlayerState) Validate() error {
	if p.PlayerID == "" {
		return ErrMalformedState
	}
	if p.Currency < 0 || p.TotalClicks < 0 || p.BestStreak < 0 {
		return ErrMalformedState
	}
	if hasDuplicates(p.OwnedPowerUps) || hasDuplicates(p.UnlockedAchievements) {
		return ErrMalformedState
	}
	return nil
}

func hasDuplicates[T comparable](ids []T) bool {
	seen := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// MergeStates reconciles two copies of the same player's state after a
// period of divergence. Monotonic counters take the pointwise maximum and
// ownership sets take the union, so progress recorded on either side is
// never discarded. Identity fields come from the remote copy; SessionStart
// keeps the earlier of the two sessions.
func MergeStates(remote, local *PlayerState) *PlayerState {
	merged := remote.Clone()

	merged.Currency = max(remote.Currency, local.Currency)
	merged.TotalClicks = max(remote.TotalClicks, local.TotalClicks)
	merged.BestStreak = max(remote.BestStreak, local.BestStreak)

	for _, id := range local.OwnedPowerUps {
		merged.AddPowerUp(id)
	}
	for _, id := range local.UnlockedAchievements {
		merged.AddAchievement(id)
	}

	if !local.SessionStart.IsZero() && local.SessionStart.Before(merged.SessionStart) {
		merged.SessionStart = local.SessionStart
	}
	if local.LastSyncedAt.After(merged.LastSyncedAt) {
		merged.LastSyncedAt = local.LastSyncedAt
	}

	return merged
}
