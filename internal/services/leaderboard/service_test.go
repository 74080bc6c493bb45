package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/taptowin/taptowin/internal/dependencies/mocks"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/storage/memory"
	"github.com/taptowin/taptowin/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) addPlayer(id string, currency, clicks int64, streak int, lastSynced time.Time) {
	state := model.NewPlayerState(model.PlayerID(id), s.clock.Now().Add(-time.Hour))
	state.Currency = currency
	state.TotalClicks = clicks
	state.BestStreak = streak
	state.LastSyncedAt = lastSynced
	s.Require().NoError(s.storage.SavePlayer(s.ctx, state))
}

func (s *ServiceSuite) TestTopPlayersOrdersByCurrency() {
	now := s.clock.Now()
	s.addPlayer("bronze", 100, 100, 1, now)
	s.addPlayer("gold", 300, 300, 3, now)
	s.addPlayer("silver", 200, 200, 2, now)

	entries, err := s.service.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)

	s.Require().Len(entries, 3)
	s.Equal(model.PlayerID("gold"), entries[0].PlayerID)
	s.Equal(model.PlayerID("silver"), entries[1].PlayerID)
	s.Equal(model.PlayerID("bronze"), entries[2].PlayerID)
	s.Equal(1, entries[0].Rank)
	s.Equal(3, entries[2].Rank)
}

func (s *ServiceSuite) TestTopPlayersExcludesZeroCurrency() {
	now := s.clock.Now()
	s.addPlayer("earner", 100, 100, 1, now)
	s.addPlayer("fresh", 0, 0, 0, now)

	entries, err := s.service.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)

	s.Require().Len(entries, 1)
	s.Equal(model.PlayerID("earner"), entries[0].PlayerID)
}

func (s *ServiceSuite) TestTopPlayersTruncatesToLimit() {
	now := s.clock.Now()
	s.addPlayer("a", 300, 1, 1, now)
	s.addPlayer("b", 200, 1, 1, now)
	s.addPlayer("c", 100, 1, 1, now)

	entries, err := s.service.TopPlayers(s.ctx, 2)
	s.Require().NoError(err)

	s.Len(entries, 2)
}

func (s *ServiceSuite) TestActivityStatus() {
	now := s.clock.Now()
	s.addPlayer("online", 300, 1, 1, now.Add(-30*time.Minute))
	s.addPlayer("recent", 200, 1, 1, now.Add(-5*time.Hour))
	s.addPlayer("offline", 100, 1, 1, now.Add(-48*time.Hour))

	entries, err := s.service.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)

	s.Require().Len(entries, 3)
	s.Equal("online", entries[0].Status)
	s.Equal("recent", entries[1].Status)
	s.Equal("offline", entries[2].Status)
}

func (s *ServiceSuite) TestGlobalStats() {
	now := s.clock.Now()
	s.addPlayer("a", 300, 600, 10, now.Add(-10*time.Minute))
	s.addPlayer("b", 100, 200, 20, now.Add(-5*time.Hour))

	stats, err := s.service.GlobalStats(s.ctx)
	s.Require().NoError(err)

	s.Equal(2, stats.TotalPlayers)
	s.Equal(int64(400), stats.TotalCurrency)
	s.Equal(int64(800), stats.TotalClicks)
	s.Equal(int64(300), stats.HighestEarnings)
	s.Equal(int64(600), stats.MostClicks)
	s.Equal(20, stats.BestStreak)
	s.Equal(int64(200), stats.AverageCurrency)
	s.Equal(int64(400), stats.AverageClicks)
	s.Equal(1, stats.ActivePlayers)
	s.Equal(2, stats.DailyActivePlayers)
}

func (s *ServiceSuite) TestGlobalStatsEmpty() {
	stats, err := s.service.GlobalStats(s.ctx)
	s.Require().NoError(err)

	s.Zero(stats.TotalPlayers)
	s.Zero(stats.AverageCurrency)
}

func (s *ServiceSuite) TestPlayerRank() {
	now := s.clock.Now()
	s.addPlayer("first", 400, 1, 1, now)
	s.addPlayer("second", 300, 1, 1, now)
	s.addPlayer("third", 200, 1, 1, now)
	s.addPlayer("fourth", 100, 1, 1, now)

	info, err := s.service.PlayerRank(s.ctx, "second")
	s.Require().NoError(err)

	s.Equal(2, info.Rank)
	s.Equal(4, info.TotalPlayers)
	s.InDelta(50.0, info.Percentile, 0.01)
	s.Equal(int64(300), info.Earnings)
}

func (s *ServiceSuite) TestPlayerRankNotFound() {
	_, err := s.service.PlayerRank(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestPlayerRankExcludesZeroCurrency() {
	s.addPlayer("fresh", 0, 0, 0, s.clock.Now())

	_, err := s.service.PlayerRank(s.ctx, "fresh")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
