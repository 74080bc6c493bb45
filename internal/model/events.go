package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventPowerUpPurchased    EventType = "power_up_purchased"
	EventStateSaved          EventType = "state_saved"
	EventStateReset          EventType = "state_reset"
)

// Event is the base structure for all engine events
type Event struct {
	Type      EventType
	Timestamp time.Time
	PlayerID  PlayerID
	Payload   any
}

// AchievementUnlockedPayload contains data for achievement unlock events.
// Exactly one event is emitted per achievement per player, ever.
type AchievementUnlockedPayload struct {
	Achievement Achievement
}

// PowerUpPurchasedPayload contains data for purchase events
type PowerUpPurchasedPayload struct {
	PowerUp       PowerUp
	CurrencyAfter int64
}

// StateSavedPayload contains data for successful remote write events
type StateSavedPayload struct {
	LastSyncedAt time.Time
	Attempts     int
}
