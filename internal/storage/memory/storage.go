package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[model.PlayerID]*model.PlayerState
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.PlayerState),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, state *model.PlayerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[state.PlayerID] = state.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return state.Clone(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*model.PlayerState, 0, len(s.players))
	for _, state := range s.players {
		players = append(players, state.Clone())
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Currency != players[j].Currency {
			return players[i].Currency > players[j].Currency
		}
		return players[i].SessionStart.Before(players[j].SessionStart)
	})

	return players, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
