package response

import (
	"time"

	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/leaderboard"
)

// PlayerState represents a player's full state in API responses
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

// PlayerStateFromModel converts a model.PlayerState to a response PlayerState
func PlayerStateFromModel(p *model.PlayerState) PlayerState {
	powerUps := make([]string, len(p.OwnedPowerUps))
	for i, id := range p.OwnedPowerUps {
		powerUps[i] = string(id)
	}
	achievements := make([]string, len(p.UnlockedAchievements))
	for i, id := range p.UnlockedAchievements {
		achievements[i] = string(id)
	}
	return PlayerState{
		PlayerID:      string(p.PlayerID),
		Currency:      p.Currency,
		TotalClicks:   p.TotalClicks,
		OwnedPowerUps: powerUps,
		Achievements:  achievements,
		BestStreak:    p.BestStreak,
		SessionStart:  p.SessionStart,
		LastSyncedAt:  p.LastSyncedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// LeaderboardEntry represents one ranked row
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	PlayerID         string    `json:"player_id"`
	Currency         int64     `json:"currency"`
	TotalClicks      int64     `json:"total_clicks"`
	BestStreak       int       `json:"best_streak"`
	AchievementCount int       `json:"achievement_count"`
	PowerUpCount     int       `json:"power_up_count"`
	Status           string    `json:"status"`
	LastActive       time.Time `json:"last_active"`
}

// LeaderboardEntryFromModel converts a leaderboard.Entry
func LeaderboardEntryFromModel(e leaderboard.Entry) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:             e.Rank,
		PlayerID:         string(e.PlayerID),
		Currency:         e.Currency,
		TotalClicks:      e.TotalClicks,
		BestStreak:       e.BestStreak,
		AchievementCount: e.AchievementCount,
		PowerUpCount:     e.PowerUpCount,
		Status:           e.Status,
		LastActive:       e.LastActive,
	}
}

// LeaderboardResponse is the response for the leaderboard endpoint
type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	TotalRanked int                `json:"total_ranked"`
}

// GlobalStats is the response for the global stats endpoint
type GlobalStats struct {
	TotalPlayers       int   `json:"total_players"`
	TotalCurrency      int64 `json:"total_currency"`
	TotalClicks        int64 `json:"total_clicks"`
	HighestEarnings    int64 `json:"highest_earnings"`
	MostClicks         int64 `json:"most_clicks"`
	BestStreak         int   `json:"best_streak"`
	AverageCurrency    int64 `json:"average_currency"`
	AverageClicks      int64 `json:"average_clicks"`
	ActivePlayers      int   `json:"active_players"`
	DailyActivePlayers int   `json:"daily_active_players"`
}

// GlobalStatsFromModel converts leaderboard.GlobalStats
func GlobalStatsFromModel(s leaderboard.GlobalStats) GlobalStats {
	return GlobalStats{
		TotalPlayers:       s.TotalPlayers,
		TotalCurrency:      s.TotalCurrency,
		TotalClicks:        s.TotalClicks,
		HighestEarnings:    s.HighestEarnings,
		MostClicks:         s.MostClicks,
		BestStreak:         s.BestStreak,
		AverageCurrency:    s.AverageCurrency,
		AverageClicks:      s.AverageClicks,
		ActivePlayers:      s.ActivePlayers,
		DailyActivePlayers: s.DailyActivePlayers,
	}
}

// PlayerRank is the response for the player rank endpoint
type PlayerRank struct {
	PlayerID     string  `json:"player_id"`
	Rank         int     `json:"rank"`
	TotalPlayers int     `json:"total_players"`
	Percentile   float64 `json:"percentile"`
	Earnings     int64   `json:"earnings"`
}

// PlayerRankFromModel converts a leaderboard.RankInfo
func PlayerRankFromModel(r leaderboard.RankInfo) PlayerRank {
	return PlayerRank{
		PlayerID:     string(r.PlayerID),
		Rank:         r.Rank,
		TotalPlayers: r.TotalPlayers,
		Percentile:   r.Percentile,
		Earnings:     r.Earnings,
	}
}
