package sync

import (
	"context"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/achievement"
	"github.com/taptowin/taptowin/internal/services/economy"
	"github.com/taptowin/taptowin/internal/services/metrics"
	"github.com/taptowin/taptowin/internal/services/multiplier"
	"github.com/taptowin/taptowin/internal/storage/local"
)

var (
	// ErrNotAttached is returned by operations on a session before Attach
	ErrNotAttached = errors.New("session not attached")

	// ErrAlreadyAttached is returned by a second Attach on the same session
	ErrAlreadyAttached = errors.New("session already attached")
)

// Status describes where a session sits in the sync lifecycle
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusSynced        Status = "synced"
	StatusDirty         Status = "dirty"
	StatusSaving        Status = "saving"
	StatusResetting     Status = "resetting"
)

// EventFunc receives session events. Callbacks run synchronously and must
// not call back into the session.
type EventFunc func(model.Event)

// ClickResult is the outcome of a single click
type ClickResult struct {
	Delta           int64
	Currency        int64
	CurrentStreak   int
	ClicksPerMinute float64
	Unlocked        []model.Achievement
}

// PurchaseResult is the outcome of a power-up purchase
type PurchaseResult struct {
	PowerUp             model.PowerUp
	Currency            int64
	EffectiveMultiplier int64
	Unlocked            []model.Achievement
}

// Session owns a single player's live state and keeps it synchronized
// across the two persistence tiers. Mutations apply to memory and the local
// snapshot synchronously; remote writes are debounced onto a background
// writer that retries with backoff when the remote is unreachable.
type Session struct {
	playerID model.PlayerID
	remote   RemoteStore
	local    local.SnapshotStore
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config

	metrics      *metrics.Tracker
	multipliers  *multiplier.Stack
	economy      *economy.Engine
	achievements *achievement.Evaluator

	onEvent EventFunc

	mu        stdsync.Mutex
	state     *model.PlayerState
	status    Status
	dirty     bool
	resetting bool
	attempts  int

	// saveMu serializes remote writes; Reset takes it to wait out an
	// in-flight save before clearing
	saveMu stdsync.Mutex

	kick      chan struct{}
	done      chan struct{}
	closeOnce stdsync.Once
	wg        stdsync.WaitGroup
}

// NewSession creates a detached session for the given player. Attach must be
// called before any gameplay operation.
func NewSession(
	playerID model.PlayerID,
	remote RemoteStore,
	localStore local.SnapshotStore,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Session {
	tracker := metrics.New(clk)
	stack := multiplier.New()
	return &Session{
		playerID:     playerID,
		remote:       remote,
		local:        localStore,
		clock:        clk,
		logger:       logger,
		cfg:          cfg,
		metrics:      tracker,
		multipliers:  stack,
		economy:      economy.New(stack, tracker, logger),
		achievements: achievement.New(logger),
		status:       StatusUninitialized,
		kick:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// OnEvent registers an event callback. Must be called before Attach.
func (s *Session) OnEvent(fn EventFunc) {
	s.onEvent = fn
}

// PlayerID returns the player this session is bound to
func (s *Session) PlayerID() model.PlayerID {
	return s.playerID
}

// Attach loads the player's state and starts the background writer.
//
// The remote record is authoritative when reachable. A local snapshot saved
// after the remote's last sync carries offline progress and is folded in
// with the monotonic merge. When the remote has no record yet, a local
// snapshot migrates into the initial record. When the remote is unreachable
// entirely, the session comes up on the local copy (or a fresh state) and
// stays dirty until a save lands.
func (s *Session) Attach(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusUninitialized {
		s.mu.Unlock()
		return ErrAlreadyAttached
	}
	s.status = StatusLoading
	s.mu.Unlock()

	snap := s.loadLocalSnapshot(ctx)

	state, dirty, err := s.resolveInitialState(ctx, snap)
	if err != nil {
		s.mu.Lock()
		s.status = StatusUninitialized
		s.mu.Unlock()
		return err
	}

	state.SessionStart = s.clock.Now()
	s.metrics.StartSession()

	s.mu.Lock()
	s.state = state
	s.dirty = dirty
	if dirty {
		s.status = StatusDirty
	} else {
		s.status = StatusSynced
	}
	s.writeLocalLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	if dirty {
		s.kickWriter()
	}

	s.logger.Info("session attached",
		slog.String("player_id", string(s.playerID)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

func (s *Session) resolveInitialState(ctx context.Context, snap *model.Snapshot) (*model.PlayerState, bool, error) {
	remoteState, err := s.remote.GetPlayer(ctx, s.playerID)
	switch {
	case err == nil:
		if snap != nil && snap.SavedAt.After(remoteState.LastSyncedAt) {
			merged := model.MergeStates(remoteState, &snap.State)
			return merged, true, nil
		}
		return remoteState.Clone(), false, nil

	case errors.Is(err, model.ErrPlayerNotFound):
		created, cerr := s.remote.CreatePlayer(ctx, s.playerID, snap)
		if cerr == nil {
			return created.Clone(), false, nil
		}
		if errors.Is(cerr, model.ErrPlayerExists) {
			// lost a create race, the record is there now
			return s.resolveInitialState(ctx, snap)
		}
		return s.offlineState(snap), true, nil

	default:
		s.logger.Warn("remote unreachable on attach, starting from local state",
			slog.String("player_id", string(s.playerID)),
			slog.Any("error", err),
		)
		return s.offlineState(snap), true, nil
	}
}

func (s *Session) offlineState(snap *model.Snapshot) *model.PlayerState {
	if snap != nil {
		return snap.State.Clone()
	}
	return model.NewPlayerState(s.playerID, s.clock.Now())
}

func (s *Session) loadLocalSnapshot(ctx context.Context) *model.Snapshot {
	snap, err := s.local.Load(ctx, s.playerID)
	if err != nil {
		if !errors.Is(err, model.ErrSnapshotNotFound) {
			s.logger.Warn("discarding unreadable local snapshot",
				slog.String("player_id", string(s.playerID)),
				slog.Any("error", err),
			)
		}
		return nil
	}
	if err := snap.State.Validate(); err != nil {
		s.logger.Warn("discarding malformed local snapshot",
			slog.String("player_id", string(s.playerID)),
		)
		return nil
	}
	if snap.State.PlayerID != s.playerID {
		return nil
	}
	return snap
}

// Click applies a single click: credits currency, updates streak and rate
// metrics, evaluates achievements, and schedules a remote save
func (s *Session) Click() (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ClickResult{}, ErrNotAttached
	}
	if s.resetting {
		return ClickResult{}, model.ErrResetInProgress
	}

	delta := s.economy.ApplyClick(s.state)
	unlocked := s.achievements.Evaluate(s.state)

	s.writeLocalLocked()
	s.markDirtyLocked()
	s.emitUnlocksLocked(unlocked)

	return ClickResult{
		Delta:           delta,
		Currency:        s.state.Currency,
		CurrentStreak:   s.metrics.CurrentStreak(),
		ClicksPerMinute: s.metrics.ClicksPerMinute(),
		Unlocked:        unlocked,
	}, nil
}

// Purchase buys a power-up. A rejected purchase leaves the session state
// untouched and schedules nothing.
func (s *Session) Purchase(id model.PowerUpID) (PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return PurchaseResult{}, ErrNotAttached
	}
	if s.resetting {
		return PurchaseResult{}, model.ErrResetInProgress
	}

	p, err := s.economy.PurchasePowerUp(s.state, id)
	if err != nil {
		return PurchaseResult{}, err
	}
	unlocked := s.achievements.Evaluate(s.state)

	s.writeLocalLocked()
	s.markDirtyLocked()

	s.emit(model.Event{
		Type:      model.EventPowerUpPurchased,
		Timestamp: s.clock.Now(),
		PlayerID:  s.playerID,
		Payload: model.PowerUpPurchasedPayload{
			PowerUp:       p,
			CurrencyAfter: s.state.Currency,
		},
	})
	s.emitUnlocksLocked(unlocked)

	return PurchaseResult{
		PowerUp:             p,
		Currency:            s.state.Currency,
		EffectiveMultiplier: s.multipliers.EffectiveMultiplier(s.state),
		Unlocked:            unlocked,
	}, nil
}

// State returns a copy of the current in-memory state
func (s *Session) State() (*model.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, ErrNotAttached
	}
	return s.state.Clone(), nil
}

// Status returns the session's sync status
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// EffectiveMultiplier returns the current multiplier product
func (s *Session) EffectiveMultiplier() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0, ErrNotAttached
	}
	return s.multipliers.EffectiveMultiplier(s.state), nil
}

// Catalog returns the power-up catalog in display order
func (s *Session) Catalog() []model.PowerUp {
	return s.multipliers.Catalog()
}

// SessionDuration returns time elapsed since Attach
func (s *Session) SessionDuration() time.Duration {
	return s.metrics.SessionDuration()
}

// Flush forces an immediate remote save of any pending state
func (s *Session) Flush(ctx context.Context) error {
	return s.save(ctx)
}

// Reset clears the player's progress on the remote and locally. It waits for
// any in-flight save to finish first so a stale write cannot land after the
// clear, and rejects clicks and purchases while the reset is running.
func (s *Session) Reset(ctx context.Context) (*model.PlayerState, error) {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return nil, ErrNotAttached
	}
	if s.resetting {
		s.mu.Unlock()
		return nil, model.ErrResetInProgress
	}
	s.resetting = true
	s.status = StatusResetting
	s.mu.Unlock()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	fresh, err := s.remote.ResetPlayer(ctx, s.playerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetting = false
	if err != nil {
		if s.dirty {
			s.status = StatusDirty
		} else {
			s.status = StatusSynced
		}
		return nil, err
	}

	s.state = fresh.Clone()
	s.state.SessionStart = s.clock.Now()
	s.dirty = false
	s.status = StatusSynced
	s.metrics.StartSession()
	s.writeLocalLocked()

	s.emit(model.Event{
		Type:      model.EventStateReset,
		Timestamp: s.clock.Now(),
		PlayerID:  s.playerID,
	})

	s.logger.Info("session reset", slog.String("player_id", string(s.playerID)))
	return s.state.Clone(), nil
}

// Close stops the background writer and flushes any pending state. It is
// safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	return s.save(ctx)
}

// run is the background writer loop. The debounce timer re-arms on each
// mutation so bursts coalesce; the deadline timer caps how long continuous
// mutation can defer a save. Failed saves retry with doubling backoff.
func (s *Session) run() {
	defer s.wg.Done()

	backoff := s.cfg.RetryBackoffMin
	var debounce, deadline <-chan time.Time

	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
			debounce = time.After(s.cfg.DebounceInterval)
			if deadline == nil {
				deadline = time.After(s.cfg.MaxSaveInterval)
			}
			continue
		case <-debounce:
		case <-deadline:
		}

		debounce, deadline = nil, nil

		if err := s.save(context.Background()); err != nil {
			s.logger.Warn("remote save failed, will retry",
				slog.String("player_id", string(s.playerID)),
				slog.Duration("backoff", backoff),
				slog.Any("error", err),
			)
			debounce = time.After(backoff)
			backoff = min(2*backoff, s.cfg.RetryBackoffMax)
			continue
		}
		backoff = s.cfg.RetryBackoffMin

		s.mu.Lock()
		still := s.dirty
		s.mu.Unlock()
		if still {
			debounce = time.After(s.cfg.DebounceInterval)
			deadline = time.After(s.cfg.MaxSaveInterval)
		}
	}
}

// save performs one remote write of the current dirty state. The session
// lock is released during the network call so gameplay continues; mutations
// landing mid-save re-mark the session dirty via the merge below.
func (s *Session) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.state == nil || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	outgoing := s.state.Clone()
	s.dirty = false
	s.status = StatusSaving
	s.attempts++
	s.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
	defer cancel()

	stored, err := s.remote.SavePlayer(saveCtx, outgoing)
	if err != nil && errors.Is(err, model.ErrPlayerNotFound) {
		// The record was never created remotely (offline attach)
		snap := &model.Snapshot{State: *outgoing, SavedAt: s.clock.Now()}
		stored, err = s.remote.CreatePlayer(saveCtx, s.playerID, snap)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.dirty = true
		s.status = StatusDirty
		return err
	}

	// Fold the acknowledged record back in. Clicks applied while the save
	// was in flight survive because the merge takes the max of each counter.
	merged := model.MergeStates(stored, s.state)
	merged.SessionStart = s.state.SessionStart
	s.state = merged

	if s.dirty {
		s.status = StatusDirty
	} else {
		s.status = StatusSynced
	}
	s.writeLocalLocked()

	attempts := s.attempts
	s.attempts = 0
	s.emit(model.Event{
		Type:      model.EventStateSaved,
		Timestamp: s.clock.Now(),
		PlayerID:  s.playerID,
		Payload: model.StateSavedPayload{
			LastSyncedAt: s.state.LastSyncedAt,
			Attempts:     attempts,
		},
	})
	return nil
}

// writeLocalLocked persists the current state to the local snapshot store.
// Callers hold s.mu. Local write failures are logged, not fatal; the
// in-memory state and the remote path still carry the progress.
func (s *Session) writeLocalLocked() {
	snap := model.Snapshot{
		State:   *s.state.Clone(),
		SavedAt: s.clock.Now(),
	}
	if err := s.local.Save(context.Background(), &snap); err != nil {
		s.logger.Warn("local snapshot write failed",
			slog.String("player_id", string(s.playerID)),
			slog.Any("error", err),
		)
	}
}

func (s *Session) markDirtyLocked() {
	s.dirty = true
	if s.status == StatusSynced {
		s.status = StatusDirty
	}
	s.kickWriter()
}

func (s *Session) kickWriter() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Session) emitUnlocksLocked(unlocked []model.Achievement) {
	for _, a := range unlocked {
		s.emit(model.Event{
			Type:      model.EventAchievementUnlocked,
			Timestamp: s.clock.Now(),
			PlayerID:  s.playerID,
			Payload:   model.AchievementUnlockedPayload{Achievement: a},
		})
	}
}

func (s *Session) emit(event model.Event) {
	if s.onEvent != nil {
		s.onEvent(event)
	}
}
