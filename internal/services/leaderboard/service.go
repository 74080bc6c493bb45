package leaderboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/storage"
)

// Activity status thresholds, measured against the last successful remote
// write
const (
	onlineWindow = time.Hour
	recentWindow = 24 * time.Hour
)

// Entry is a ranked leaderboard row
type Entry struct {
	Rank             int
	PlayerID         model.PlayerID
	Currency         int64
	TotalClicks      int64
	BestStreak       int
	AchievementCount int
	PowerUpCount     int
	Status           string
	LastActive       time.Time
}

// GlobalStats aggregates every ranked player
type GlobalStats struct {
	TotalPlayers       int
	TotalCurrency      int64
	TotalClicks        int64
	HighestEarnings    int64
	MostClicks         int64
	BestStreak         int
	AverageCurrency    int64
	AverageClicks      int64
	ActivePlayers      int
	DailyActivePlayers int
}

// RankInfo is a single player's standing
type RankInfo struct {
	PlayerID     model.PlayerID
	Rank         int
	TotalPlayers int
	Percentile   float64
	Earnings     int64
}

// Service serves read-only aggregations over the remote player records. It
// never mutates them and tolerates stale reads against concurrent saves.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger,
	}
}

// TopPlayers returns up to n entries ordered by currency descending, ties
// broken by earlier session start. Players with zero currency are excluded.
func (s *Service) TopPlayers(ctx context.Context, n int) ([]Entry, error) {
	ranked, err := s.rankedPlayers(ctx)
	if err != nil {
		return nil, err
	}

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	now := s.clock.Now()
	entries := make([]Entry, len(ranked))
	for i, state := range ranked {
		entries[i] = Entry{
			Rank:             i + 1,
			PlayerID:         state.PlayerID,
			Currency:         state.Currency,
			TotalClicks:      state.TotalClicks,
			BestStreak:       state.BestStreak,
			AchievementCount: len(state.UnlockedAchievements),
			PowerUpCount:     len(state.OwnedPowerUps),
			Status:           activityStatus(now, state.LastSyncedAt),
			LastActive:       state.LastSyncedAt,
		}
	}
	return entries, nil
}

// TotalRanked returns the number of players with any earnings
func (s *Service) TotalRanked(ctx context.Context) (int, error) {
	ranked, err := s.rankedPlayers(ctx)
	if err != nil {
		return 0, err
	}
	return len(ranked), nil
}

// GlobalStats aggregates all ranked players into game-wide statistics
func (s *Service) GlobalStats(ctx context.Context) (GlobalStats, error) {
	ranked, err := s.rankedPlayers(ctx)
	if err != nil {
		return GlobalStats{}, err
	}

	now := s.clock.Now()
	stats := GlobalStats{TotalPlayers: len(ranked)}
	for _, state := range ranked {
		stats.TotalCurrency += state.Currency
		stats.TotalClicks += state.TotalClicks
		stats.HighestEarnings = max(stats.HighestEarnings, state.Currency)
		stats.MostClicks = max(stats.MostClicks, state.TotalClicks)
		if state.BestStreak > stats.BestStreak {
			stats.BestStreak = state.BestStreak
		}
		if now.Sub(state.LastSyncedAt) < onlineWindow {
			stats.ActivePlayers++
		}
		if now.Sub(state.LastSyncedAt) < recentWindow {
			stats.DailyActivePlayers++
		}
	}

	if len(ranked) > 0 {
		stats.AverageCurrency = stats.TotalCurrency / int64(len(ranked))
		stats.AverageClicks = stats.TotalClicks / int64(len(ranked))
	}
	return stats, nil
}

// PlayerRank returns the given player's rank and percentile among ranked
// players. Unknown players and players without earnings report
// model.ErrPlayerNotFound.
func (s *Service) PlayerRank(ctx context.Context, id model.PlayerID) (RankInfo, error) {
	ranked, err := s.rankedPlayers(ctx)
	if err != nil {
		return RankInfo{}, err
	}

	for i, state := range ranked {
		if state.PlayerID != id {
			continue
		}
		rank := i + 1
		total := len(ranked)
		return RankInfo{
			PlayerID:     id,
			Rank:         rank,
			TotalPlayers: total,
			Percentile:   float64(total-rank) / float64(total) * 100,
			Earnings:     state.Currency,
		}, nil
	}
	return RankInfo{}, model.ErrPlayerNotFound
}

// rankedPlayers returns all players with earnings, in leaderboard order.
// ListPlayers already orders by currency/session start.
func (s *Service) rankedPlayers(ctx context.Context) ([]*model.PlayerState, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	ranked := players[:0]
	for _, state := range players {
		if state.Currency > 0 {
			ranked = append(ranked, state)
		}
	}
	return ranked, nil
}

func activityStatus(now, lastActive time.Time) string {
	switch since := now.Sub(lastActive); {
	case since < onlineWindow:
		return "online"
	case since < recentWindow:
		return "recent"
	default:
		return "offline"
	}
}
