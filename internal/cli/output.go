package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case PlayerState:
		o.printPlayerState(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case GlobalStats:
		o.printGlobalStats(v)
	case PlayerRank:
		o.printPlayerRank(v)
	case PlayResult:
		o.printPlayResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// PlayerState response type (matches API)
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

// LeaderboardEntry response type
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

// Leaderboard response type
type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"entries"`
	TotalRanked int                `json:"total_ranked"`
}

// GlobalStats response type
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

// PlayerRank response type
type PlayerRank struct {
	PlayerID     string  `json:"player_id"`
	Rank         int     `json:"rank"`
	TotalPlayers int     `json:"total_players"`
	Percentile   float64 `json:"percentile"`
	Earnings     int64   `json:"earnings"`
}

// PlayResult summarizes a play session
type PlayResult struct {
	PlayerID        string   `json:"player_id"`
	Clicks          int      `json:"clicks"`
	Earned          int64    `json:"earned"`
	Currency        int64    `json:"currency"`
	BestStreak      int      `json:"best_streak"`
	ClicksPerMinute float64  `json:"clicks_per_minute"`
	Purchased       []string `json:"purchased,omitempty"`
	Unlocked        []string `json:"unlocked,omitempty"`
	SyncStatus      string   `json:"sync_status"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayerState(p PlayerState) {
	fmt.Printf("Player: %s\n", p.PlayerID)
	fmt.Printf("Currency: %d\n", p.Currency)
	fmt.Printf("Total Clicks: %d\n", p.TotalClicks)
	fmt.Printf("Best Streak: %d\n", p.BestStreak)
	if len(p.OwnedPowerUps) > 0 {
		fmt.Printf("Power-ups: %s\n", strings.Join(p.OwnedPowerUps, ", "))
	}
	if len(p.Achievements) > 0 {
		fmt.Printf("Achievements: %s\n", strings.Join(p.Achievements, ", "))
	}
	fmt.Printf("Last Synced: %s\n", p.LastSyncedAt.Format(time.RFC3339))
}

func (o *Output) printLeaderboard(l Leaderboard) {
	fmt.Printf("Leaderboard (%d ranked):\n", l.TotalRanked)
	for _, e := range l.Entries {
		fmt.Printf("  %2d. %s - %d currency, %d clicks, streak %d [%s]\n",
			e.Rank, e.PlayerID, e.Currency, e.TotalClicks, e.BestStreak, e.Status)
	}
}

func (o *Output) printGlobalStats(s GlobalStats) {
	fmt.Printf("Players: %d (%d online, %d active today)\n",
		s.TotalPlayers, s.ActivePlayers, s.DailyActivePlayers)
	fmt.Printf("Total Currency: %d\n", s.TotalCurrency)
	fmt.Printf("Total Clicks: %d\n", s.TotalClicks)
	fmt.Printf("Highest Earnings: %d\n", s.HighestEarnings)
	fmt.Printf("Most Clicks: %d\n", s.MostClicks)
	fmt.Printf("Best Streak: %d\n", s.BestStreak)
	fmt.Printf("Average: %d currency, %d clicks\n", s.AverageCurrency, s.AverageClicks)
}

func (o *Output) printPlayerRank(r PlayerRank) {
	fmt.Printf("Player: %s\n", r.PlayerID)
	fmt.Printf("Rank: %d of %d\n", r.Rank, r.TotalPlayers)
	fmt.Printf("Percentile: %.1f\n", r.Percentile)
	fmt.Printf("Earnings: %d\n", r.Earnings)
}

func (o *Output) printPlayResult(p PlayResult) {
	fmt.Printf("Player: %s\n", p.PlayerID)
	fmt.Printf("Clicks: %d (earned %d)\n", p.Clicks, p.Earned)
	fmt.Printf("Currency: %d\n", p.Currency)
	fmt.Printf("Best Streak: %d\n", p.BestStreak)
	fmt.Printf("Click Rate: %.1f/min\n", p.ClicksPerMinute)
	if len(p.Purchased) > 0 {
		fmt.Printf("Purchased: %s\n", strings.Join(p.Purchased, ", "))
	}
	if len(p.Unlocked) > 0 {
		fmt.Printf("Unlocked: %s\n", strings.Join(p.Unlocked, ", "))
	}
	fmt.Printf("Sync: %s\n", p.SyncStatus)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
