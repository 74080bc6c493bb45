package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface. Player
// records are stored as JSON values; a ZSET scored by currency is kept in
// lockstep so leaderboard reads never scan the keyspace.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, state *model.PlayerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(state.PlayerID), data, 0)
	pipe.ZAdd(ctx, currencyIndexKey(), redis.Z{
		Score:  float64(state.Currency),
		Member: string(state.PlayerID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var state model.PlayerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, model.ErrMalformedState
	}
	return &state, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerState, error) {
	// Walk the currency index highest first
	ids, err := s.client.ZRevRange(ctx, currencyIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.PlayerState{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.PlayerState, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Index entry without a record
		}
		var state model.PlayerState
		if err := json.Unmarshal([]byte(val.(string)), &state); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &state)
	}

	// The ZSET orders by currency only; apply the session-start tie-break
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Currency != players[j].Currency {
			return players[i].Currency > players[j].Currency
		}
		return players[i].SessionStart.Before(players[j].SessionStart)
	})

	return players, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
