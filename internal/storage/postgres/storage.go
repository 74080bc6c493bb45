package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens a connection pool, verifies connectivity, and creates the
// schema if it does not exist yet
func New(databaseURL string) (*Storage, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB creates a Postgres storage with an existing handle (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// EnsureSchema creates the players table if it does not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			player_id      TEXT PRIMARY KEY,
			currency       BIGINT NOT NULL DEFAULT 0,
			total_clicks   BIGINT NOT NULL DEFAULT 0,
			best_streak    INTEGER NOT NULL DEFAULT 0,
			owned_power_ups TEXT[] NOT NULL DEFAULT '{}',
			achievements   TEXT[] NOT NULL DEFAULT '{}',
			session_start  TIMESTAMPTZ NOT NULL,
			last_synced_at TIMESTAMPTZ NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (s *Storage) SavePlayer(ctx context.Context, state *model.PlayerState) error {
	powerUps := make([]string, len(state.OwnedPowerUps))
	for i, id := range state.OwnedPowerUps {
		powerUps[i] = string(id)
	}
	achievements := make([]string, len(state.UnlockedAchievements))
	for i, id := range state.UnlockedAchievements {
		achievements[i] = string(id)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (
			player_id, currency, total_clicks, best_streak,
			owned_power_ups, achievements,
			session_start, last_synced_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (player_id)
		DO UPDATE SET
			currency = EXCLUDED.currency,
			total_clicks = EXCLUDED.total_clicks,
			best_streak = EXCLUDED.best_streak,
			owned_power_ups = EXCLUDED.owned_power_ups,
			achievements = EXCLUDED.achievements,
			session_start = EXCLUDED.session_start,
			last_synced_at = EXCLUDED.last_synced_at
	`,
		string(state.PlayerID),
		state.Currency,
		state.TotalClicks,
		state.BestStreak,
		pq.Array(powerUps),
		pq.Array(achievements),
		state.SessionStart,
		state.LastSyncedAt,
		state.CreatedAt,
	)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT player_id, currency, total_clicks, best_streak,
		       owned_power_ups, achievements,
		       session_start, last_synced_at, created_at
		FROM players
		WHERE player_id = $1
	`, string(id))

	state, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return state, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, currency, total_clicks, best_streak,
		       owned_power_ups, achievements,
		       session_start, last_synced_at, created_at
		FROM players
		ORDER BY currency DESC, session_start ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var players []*model.PlayerState
	for rows.Next() {
		state, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, state)
	}
	return players, rows.Err()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*model.PlayerState, error) {
	var (
		state        model.PlayerState
		playerID     string
		powerUps     pq.StringArray
		achievements pq.StringArray
	)

	err := row.Scan(
		&playerID,
		&state.Currency,
		&state.TotalClicks,
		&state.BestStreak,
		&powerUps,
		&achievements,
		&state.SessionStart,
		&state.LastSyncedAt,
		&state.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.PlayerID = model.PlayerID(playerID)
	for _, id := range powerUps {
		state.OwnedPowerUps = append(state.OwnedPowerUps, model.PowerUpID(id))
	}
	for _, id := range achievements {
		state.UnlockedAchievements = append(state.UnlockedAchievements, model.AchievementID(id))
	}
	return &state, nil
}
