package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taptowin/taptowin/internal/dependencies/clock"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/sync"
	"github.com/taptowin/taptowin/internal/storage/local"
)

// remoteClient adapts the HTTP client to the synchronizer's remote store
// contract, so a play session syncs through the server API the same way an
// embedded session syncs through the player controller
type remoteClient struct {
	client *Client
}

var _ sync.RemoteStore = (*remoteClient)(nil)

func (r *remoteClient) CreatePlayer(ctx context.Context, id model.PlayerID, snap *model.Snapshot) (*model.PlayerState, error) {
	req := map[string]any{}
	if id != "" {
		req["player_id"] = string(id)
	}
	if snap != nil {
		req["snapshot"] = map[string]any{
			"state":    fromModelState(&snap.State),
			"saved_at": snap.SavedAt,
		}
	}

	var result PlayerState
	if err := r.client.Post("/api/v1/players", req, &result); err != nil {
		return nil, mapAPIError(err)
	}
	return toModelState(result), nil
}

func (r *remoteClient) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	var result PlayerState
	if err := r.client.Get("/api/v1/players/"+string(id), &result); err != nil {
		return nil, mapAPIError(err)
	}
	return toModelState(result), nil
}

func (r *remoteClient) SavePlayer(ctx context.Context, state *model.PlayerState) (*model.PlayerState, error) {
	req := map[string]any{"state": fromModelState(state)}

	var result PlayerState
	if err := r.client.Put("/api/v1/players/"+string(state.PlayerID), req, &result); err != nil {
		return nil, mapAPIError(err)
	}
	return toModelState(result), nil
}

func (r *remoteClient) ResetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerState, error) {
	var result PlayerState
	if err := r.client.Post("/api/v1/players/"+string(id)+"/reset", nil, &result); err != nil {
		return nil, mapAPIError(err)
	}
	return toModelState(result), nil
}

// mapAPIError converts API error codes back to model sentinel errors so the
// synchronizer's error handling behaves the same over HTTP
func mapAPIError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case "PLAYER_NOT_FOUND":
		return model.ErrPlayerNotFound
	case "PLAYER_EXISTS":
		return model.ErrPlayerExists
	case "MALFORMED_STATE":
		return model.ErrMalformedState
	case "STORAGE_UNAVAILABLE":
		return model.ErrRemoteUnavailable
	default:
		return err
	}
}

func toModelState(p PlayerState) *model.PlayerState {
	powerUps := make([]model.PowerUpID, len(p.OwnedPowerUps))
	for i, id := range p.OwnedPowerUps {
		powerUps[i] = model.PowerUpID(id)
	}
	achievements := make([]model.AchievementID, len(p.Achievements))
	for i, id := range p.Achievements {
		achievements[i] = model.AchievementID(id)
	}
	return &model.PlayerState{
		PlayerID:             model.PlayerID(p.PlayerID),
		Currency:             p.Currency,
		TotalClicks:          p.TotalClicks,
		OwnedPowerUps:        powerUps,
		UnlockedAchievements: achievements,
		BestStreak:           p.BestStreak,
		SessionStart:         p.SessionStart,
		LastSyncedAt:         p.LastSyncedAt,
		CreatedAt:            p.CreatedAt,
	}
}

func fromModelState(p *model.PlayerState) PlayerState {
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

func newPlayCmd() *cobra.Command {
	var (
		clicks   int
		interval time.Duration
		buy      []string
	)

	cmd := &cobra.Command{
		Use:   "play <player-id>",
		Short: "Run a synchronized play session",
		Long: `play runs a locally synchronized game session against the server.

Clicks apply to local state immediately and are saved to the server in the
background, so progress survives even if the server is briefly unreachable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.PlayerID(args[0])
			ctx := cmd.Context()

			snapshots, err := local.NewFileStore(cfg.SnapshotDir())
			if err != nil {
				return fmt.Errorf("failed to open snapshot store: %w", err)
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			session := sync.NewSession(id, &remoteClient{client: client}, snapshots, clock.New(), logger, sync.DefaultConfig())

			var unlocked []string
			session.OnEvent(func(e model.Event) {
				if e.Type == model.EventAchievementUnlocked {
					p := e.Payload.(model.AchievementUnlockedPayload)
					unlocked = append(unlocked, string(p.Achievement.ID))
				}
			})

			if err := session.Attach(ctx); err != nil {
				return fmt.Errorf("failed to attach session: %w", err)
			}

			var (
				earned     int64
				lastResult sync.ClickResult
			)
			for i := 0; i < clicks; i++ {
				result, err := session.Click()
				if err != nil {
					return err
				}
				earned += result.Delta
				lastResult = result
				if interval > 0 && i < clicks-1 {
					time.Sleep(interval)
				}
			}

			var purchased []string
			for _, powerUp := range buy {
				result, err := session.Purchase(model.PowerUpID(powerUp))
				if err != nil {
					out := NewOutput(cfg.Output)
					out.PrintError(fmt.Errorf("purchase %s: %w", powerUp, err))
					continue
				}
				purchased = append(purchased, string(result.PowerUp.ID))
			}

			if err := session.Close(ctx); err != nil {
				return fmt.Errorf("failed to flush session: %w", err)
			}

			state, err := session.State()
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(PlayResult{
				PlayerID:        string(id),
				Clicks:          clicks,
				Earned:          earned,
				Currency:        state.Currency,
				BestStreak:      state.BestStreak,
				ClicksPerMinute: lastResult.ClicksPerMinute,
				Purchased:       purchased,
				Unlocked:        unlocked,
				SyncStatus:      string(session.Status()),
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&clicks, "clicks", 10, "Number of clicks to perform")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "Delay between clicks")
	cmd.Flags().StringArrayVar(&buy, "buy", nil, "Power-up IDs to purchase after clicking (repeatable)")

	return cmd
}
