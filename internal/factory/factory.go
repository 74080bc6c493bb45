package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/dependencies/random"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/leaderboard"
	"github.com/taptowin/taptowin/internal/services/player"
	"github.com/taptowin/taptowin/internal/services/sync"
	"github.com/taptowin/taptowin/internal/storage"
	"github.com/taptowin/taptowin/internal/storage/local"
	"github.com/taptowin/taptowin/internal/storage/memory"
	postgresstorage "github.com/taptowin/taptowin/internal/storage/postgres"
	redisstorage "github.com/taptowin/taptowin/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage        storage.Storage
	LocalSnapshots local.SnapshotStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	PlayerController   *player.Controller
	LeaderboardService *leaderboard.Service

	logger  *slog.Logger
	syncCfg sync.Config
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresURL is the database connection string (required if StorageType is "postgres")
	PostgresURL string
	// LocalDataDir is the directory for local snapshots (optional)
	// If empty, snapshots are kept in memory only
	LocalDataDir string
	// SyncConfig holds synchronizer timing (optional)
	// If zero value, defaults to sync.DefaultConfig()
	SyncConfig sync.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresURL == "" {
			return nil, errors.New("PostgresURL required when StorageType is postgres")
		}
		pgStore, err := postgresstorage.New(cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create local snapshot store
	var snapshots local.SnapshotStore
	if cfg.LocalDataDir != "" {
		fileStore, err := local.NewFileStore(cfg.LocalDataDir)
		if err != nil {
			return nil, err
		}
		snapshots = fileStore
	} else {
		snapshots = local.NewMemoryStore()
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	syncCfg := cfg.SyncConfig
	if syncCfg.DebounceInterval == 0 {
		syncCfg = sync.DefaultConfig()
	}

	return newWithDependencies(store, snapshots, clk, rnd, syncCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	snapshots local.SnapshotStore,
	clk clock.Clock,
	rnd random.Random,
	syncCfg sync.Config,
	logger *slog.Logger,
) *App {
	playerController := player.NewController(store, clk, rnd, logger)
	leaderboardService := leaderboard.New(store, clk, logger)

	return &App{
		Storage:            store,
		LocalSnapshots:     snapshots,
		Clock:              clk,
		Random:             rnd,
		PlayerController:   playerController,
		LeaderboardService: leaderboardService,
		logger:             logger,
		syncCfg:            syncCfg,
	}
}

// NewSession creates a detached game session for the given player, backed
// directly by the player controller as its remote store
func (a *App) NewSession(id model.PlayerID) *sync.Session {
	return sync.NewSession(id, a.PlayerController, a.LocalSnapshots, a.Clock, a.logger, a.syncCfg)
}

// Ensure the controller satisfies the synchronizer's remote contract
var _ sync.RemoteStore = (*player.Controller)(nil)
