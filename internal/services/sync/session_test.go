package sync

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/dependencies/random"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/player"
	"github.com/taptowin/taptowin/internal/storage/local"
	"github.com/taptowin/taptowin/internal/storage/memory"
	"github.com/taptowin/taptowin/internal/testutil"
)

// flakyRemote wraps a remote store with switchable failure injection
type flakyRemote struct {
	inner RemoteStore

	mu      stdsync.Mutex
	failing bool
}

var _ RemoteStore = (*flakyRemote)(nil)

func (r *flakyRemote) fail(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

func (r *flakyRemote) check() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return model.ErrRemoteUnavailable
	}
	return nil
}

func (r *flakyRemote) CreatePlayer(ctx context.Context, id model.PlayerID, snap *model.Snapshot) (*model.PlayerState, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.inner.CreatePlayer(ctx, id, snap)
}

func (r *flakyRemote) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.inner.GetPlayer(ctx, id)
}

func (r *flakyRemote) SavePlayer(ctx context.Context, state *model.PlayerState) (*model.PlayerState, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.inner.SavePlayer(ctx, state)
}

func (r *flakyRemote) ResetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.inner.ResetPlayer(ctx, id)
}

type SessionSuite struct {
	suite.Suite
	storage    *memory.Storage
	controller *player.Controller
	remote     *flakyRemote
	local      *local.MemoryStore
	ctx        context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.storage = memory.New()
	s.controller = player.NewController(s.storage, clock.New(), random.New(), testutil.NopLogger())
	s.remote = &flakyRemote{inner: s.controller}
	s.local = local.NewMemoryStore()
	s.ctx = context.Background()
}

func (s *SessionSuite) newSession(id model.PlayerID) *Session {
	cfg := Config{
		DebounceInterval: 10 * time.Millisecond,
		MaxSaveInterval:  100 * time.Millisecond,
		RetryBackoffMin:  10 * time.Millisecond,
		RetryBackoffMax:  50 * time.Millisecond,
		SaveTimeout:      time.Second,
	}
	return NewSession(id, s.remote, s.local, clock.New(), testutil.NopLogger(), cfg)
}

func (s *SessionSuite) attach(id model.PlayerID) *Session {
	session := s.newSession(id)
	s.Require().NoError(session.Attach(s.ctx))
	s.T().Cleanup(func() { _ = session.Close(context.Background()) })
	return session
}

func (s *SessionSuite) remoteState(id model.PlayerID) *model.PlayerState {
	state, err := s.storage.GetPlayer(s.ctx, id)
	s.Require().NoError(err)
	return state
}

// Attach tests

func (s *SessionSuite) TestAttachCreatesFreshPlayer() {
	session := s.attach("player-1")

	s.Equal(StatusSynced, session.Status())

	state, err := session.State()
	s.Require().NoError(err)
	s.Zero(state.Currency)

	// Remote record exists and the local snapshot was written
	s.remoteState("player-1")
	snap, err := s.local.Load(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), snap.State.PlayerID)
}

func (s *SessionSuite) TestAttachTwiceFails() {
	session := s.attach("player-1")
	s.ErrorIs(session.Attach(s.ctx), ErrAlreadyAttached)
}

func (s *SessionSuite) TestAttachAdoptsRemoteState() {
	created, err := s.controller.CreatePlayer(s.ctx, "player-1", nil)
	s.Require().NoError(err)
	created.Currency = 500
	created.TotalClicks = 800
	_, err = s.controller.SavePlayer(s.ctx, created)
	s.Require().NoError(err)

	session := s.attach("player-1")

	state, err := session.State()
	s.Require().NoError(err)
	s.Equal(int64(500), state.Currency)
	s.Equal(int64(800), state.TotalClicks)
}

func (s *SessionSuite) TestAttachMigratesLocalSnapshot() {
	snapState := model.NewPlayerState("player-1", time.Now().Add(-time.Hour))
	snapState.Currency = 250
	snapState.TotalClicks = 300
	s.Require().NoError(s.local.Save(s.ctx, &model.Snapshot{
		State:   *snapState,
		SavedAt: time.Now(),
	}))

	session := s.attach("player-1")

	state, err := session.State()
	s.Require().NoError(err)
	s.Equal(int64(250), state.Currency)

	// Migrated into the remote record, not just adopted locally
	s.Equal(int64(250), s.remoteState("player-1").Currency)
}

func (s *SessionSuite) TestAttachMergesNewerLocalSnapshot() {
	created, err := s.controller.CreatePlayer(s.ctx, "player-1", nil)
	s.Require().NoError(err)
	created.Currency = 120
	created.TotalClicks = 300
	_, err = s.controller.SavePlayer(s.ctx, created)
	s.Require().NoError(err)

	// Offline progress recorded after the last sync
	snapState := model.NewPlayerState("player-1", time.Now().Add(-time.Hour))
	snapState.Currency = 80
	snapState.TotalClicks = 450
	s.Require().NoError(s.local.Save(s.ctx, &model.Snapshot{
		State:   *snapState,
		SavedAt: time.Now().Add(time.Hour),
	}))

	session := s.attach("player-1")

	state, err := session.State()
	s.Require().NoError(err)
	s.Equal(int64(120), state.Currency)
	s.Equal(int64(450), state.TotalClicks)

	// The merged state is pushed back to the remote
	s.Require().Eventually(func() bool {
		return s.remoteState("player-1").TotalClicks == 450
	}, time.Second, 10*time.Millisecond)
}

func (s *SessionSuite) TestAttachWithRemoteDownUsesLocalSnapshot() {
	snapState := model.NewPlayerState("player-1", time.Now().Add(-time.Hour))
	snapState.Currency = 70
	snapState.TotalClicks = 90
	s.Require().NoError(s.local.Save(s.ctx, &model.Snapshot{
		State:   *snapState,
		SavedAt: time.Now(),
	}))

	s.remote.fail(true)
	session := s.attach("player-1")

	s.Equal(StatusDirty, session.Status())
	state, err := session.State()
	s.Require().NoError(err)
	s.Equal(int64(70), state.Currency)

	// Once the remote heals, the record is created and the session syncs
	s.remote.fail(false)
	s.Require().Eventually(func() bool {
		stored, err := s.storage.GetPlayer(s.ctx, "player-1")
		return err == nil && stored.TotalClicks == 90 && session.Status() == StatusSynced
	}, time.Second, 10*time.Millisecond)
}

// Gameplay tests

func (s *SessionSuite) TestClickBeforeAttachFails() {
	session := s.newSession("player-1")
	_, err := session.Click()
	s.ErrorIs(err, ErrNotAttached)
}

func (s *SessionSuite) TestClickCreditsAndUnlocks() {
	session := s.attach("player-1")

	result, err := session.Click()
	s.Require().NoError(err)

	s.Equal(int64(1), result.Delta)
	s.Equal(int64(1), result.Currency)
	s.Equal(1, result.CurrentStreak)
	s.Require().Len(result.Unlocked, 1)
	s.Equal(model.AchievementID("first_click"), result.Unlocked[0].ID)

	// Local snapshot reflects the click immediately
	snap, err := s.local.Load(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(1), snap.State.TotalClicks)
}

func (s *SessionSuite) TestClickPurchaseRoundTrip() {
	session := s.attach("player-1")

	for i := 0; i < 100; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}

	result, err := session.Purchase("double_click")
	s.Require().NoError(err)
	s.Equal(int64(0), result.Currency)
	s.Equal(int64(2), result.EffectiveMultiplier)

	click, err := session.Click()
	s.Require().NoError(err)
	s.Equal(int64(2), click.Delta)
}

func (s *SessionSuite) TestPurchaseInsufficientFunds() {
	session := s.attach("player-1")

	_, err := session.Purchase("double_click")
	s.ErrorIs(err, model.ErrInsufficientFunds)

	state, err := session.State()
	s.Require().NoError(err)
	s.Empty(state.OwnedPowerUps)
}

func (s *SessionSuite) TestPurchaseEmitsEvent() {
	session := s.newSession("player-1")

	var events []model.EventType
	session.OnEvent(func(e model.Event) {
		events = append(events, e.Type)
	})
	s.Require().NoError(session.Attach(s.ctx))
	defer func() { _ = session.Close(context.Background()) }()

	for i := 0; i < 100; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}
	_, err := session.Purchase("double_click")
	s.Require().NoError(err)

	s.Contains(events, model.EventPowerUpPurchased)
	s.Contains(events, model.EventAchievementUnlocked)
}

// Sync tests

func (s *SessionSuite) TestDebouncedSaveReachesRemote() {
	session := s.attach("player-1")

	for i := 0; i < 5; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}

	s.Require().Eventually(func() bool {
		return s.remoteState("player-1").TotalClicks == 5 && session.Status() == StatusSynced
	}, time.Second, 10*time.Millisecond)
}

func (s *SessionSuite) TestFlushForcesSave() {
	session := s.attach("player-1")

	_, err := session.Click()
	s.Require().NoError(err)
	s.Require().NoError(session.Flush(s.ctx))

	s.Equal(int64(1), s.remoteState("player-1").TotalClicks)
	s.Equal(StatusSynced, session.Status())
}

func (s *SessionSuite) TestOfflineClicksSurviveAndReconcile() {
	session := s.attach("player-1")

	s.remote.fail(true)
	for i := 0; i < 50; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}

	// Progress is held locally while the remote is down
	snap, err := s.local.Load(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(50), snap.State.TotalClicks)
	s.NotEqual(StatusSynced, session.Status())

	s.remote.fail(false)
	s.Require().Eventually(func() bool {
		return s.remoteState("player-1").TotalClicks == 50 && session.Status() == StatusSynced
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *SessionSuite) TestSaveEventReportsAttempts() {
	session := s.newSession("player-1")

	var mu stdsync.Mutex
	var saves []model.StateSavedPayload
	session.OnEvent(func(e model.Event) {
		if e.Type == model.EventStateSaved {
			mu.Lock()
			saves = append(saves, e.Payload.(model.StateSavedPayload))
			mu.Unlock()
		}
	})
	s.Require().NoError(session.Attach(s.ctx))
	defer func() { _ = session.Close(context.Background()) }()

	s.remote.fail(true)
	_, err := session.Click()
	s.Require().NoError(err)

	// Let a few attempts fail before healing
	time.Sleep(100 * time.Millisecond)
	s.remote.fail(false)

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(saves) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Greater(saves[0].Attempts, 1)
	s.False(saves[0].LastSyncedAt.IsZero())
}

func (s *SessionSuite) TestCloseFlushesPendingState() {
	session := s.newSession("player-1")
	s.Require().NoError(session.Attach(s.ctx))

	for i := 0; i < 3; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}
	s.Require().NoError(session.Close(s.ctx))

	s.Equal(int64(3), s.remoteState("player-1").TotalClicks)
}

func (s *SessionSuite) TestCloseIsIdempotent() {
	session := s.newSession("player-1")
	s.Require().NoError(session.Attach(s.ctx))

	_, err := session.Click()
	s.Require().NoError(err)

	s.Require().NoError(session.Close(s.ctx))
	s.Require().NoError(session.Close(s.ctx))

	s.Equal(int64(1), s.remoteState("player-1").TotalClicks)
}

// Reset tests

func (s *SessionSuite) TestResetClearsEverywhere() {
	session := s.attach("player-1")

	for i := 0; i < 10; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}
	s.Require().NoError(session.Flush(s.ctx))

	state, err := session.Reset(s.ctx)
	s.Require().NoError(err)

	s.Zero(state.Currency)
	s.Zero(state.TotalClicks)
	s.Zero(s.remoteState("player-1").TotalClicks)

	snap, err := s.local.Load(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Zero(snap.State.TotalClicks)

	s.Equal(StatusSynced, session.Status())
}

func (s *SessionSuite) TestClickAfterReset() {
	session := s.attach("player-1")

	for i := 0; i < 5; i++ {
		_, err := session.Click()
		s.Require().NoError(err)
	}
	_, err := session.Reset(s.ctx)
	s.Require().NoError(err)

	result, err := session.Click()
	s.Require().NoError(err)
	s.Equal(int64(1), result.Currency)
	// Achievements unlock again after a full reset
	s.Require().Len(result.Unlocked, 1)
	s.Equal(model.AchievementID("first_click"), result.Unlocked[0].ID)
}

func (s *SessionSuite) TestResetWithRemoteDownFails() {
	session := s.attach("player-1")

	_, err := session.Click()
	s.Require().NoError(err)
	s.Require().NoError(session.Flush(s.ctx))

	s.remote.fail(true)
	_, err = session.Reset(s.ctx)
	s.ErrorIs(err, model.ErrRemoteUnavailable)

	// Local progress is untouched by the failed reset
	state, err := session.State()
	s.Require().NoError(err)
	s.Equal(int64(1), state.TotalClicks)
	s.remote.fail(false)
}
