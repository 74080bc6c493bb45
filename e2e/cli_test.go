package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taptowin/taptowin/internal/api"
	"github.com/taptowin/taptowin/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	dataDir    string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "tapctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/tapctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		dataDir:    t.TempDir(),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--data-dir", r.dataDir,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		PlayerController:   app.PlayerController,
		LeaderboardService: app.LeaderboardService,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type playerStateResponse struct {
	PlayerID      string   `json:"player_id"`
	Currency      int64    `json:"currency"`
	TotalClicks   int64    `json:"total_clicks"`
	OwnedPowerUps []string `json:"owned_power_ups"`
	Achievements  []string `json:"achievements"`
	BestStreak    int      `json:"best_streak"`
}

type playResultResponse struct {
	PlayerID   string   `json:"player_id"`
	Clicks     int      `json:"clicks"`
	Earned     int64    `json:"earned"`
	Currency   int64    `json:"currency"`
	Unlocked   []string `json:"unlocked"`
	SyncStatus string   `json:"sync_status"`
}

type leaderboardResponse struct {
	Entries []struct {
		Rank     int    `json:"rank"`
		PlayerID string `json:"player_id"`
		Currency int64  `json:"currency"`
	} `json:"entries"`
	TotalRanked int `json:"total_ranked"`
}

func TestCLIHealth(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()
	cli := newCLIRunner(t, srv.addr)

	output, err := cli.run("health")
	require.NoError(t, err, output)

	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "ok", result.Status)
}

func TestCLIPlayerLifecycle(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()
	cli := newCLIRunner(t, srv.addr)

	// Create
	output, err := cli.run("player", "create", "--id", "e2e-player")
	require.NoError(t, err, output)

	var created playerStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Equal(t, "e2e-player", created.PlayerID)
	assert.Zero(t, created.Currency)

	// Get
	output, err = cli.run("player", "get", "e2e-player")
	require.NoError(t, err, output)

	var fetched playerStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &fetched))
	assert.Equal(t, "e2e-player", fetched.PlayerID)

	// Reset
	output, err = cli.run("player", "reset", "e2e-player")
	require.NoError(t, err, output)

	// Unknown player
	_, err = cli.run("player", "get", "no-such-player")
	assert.Error(t, err)
}

func TestCLIPlaySession(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()
	cli := newCLIRunner(t, srv.addr)

	output, err := cli.run("play", "e2e-player", "--clicks", "20", "--interval", "0")
	require.NoError(t, err, output)

	var result playResultResponse
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, 20, result.Clicks)
	assert.Equal(t, int64(20), result.Earned)
	assert.Equal(t, int64(20), result.Currency)
	assert.Contains(t, result.Unlocked, "first_click")
	assert.Equal(t, "synced", result.SyncStatus)

	// The session flushed to the server on close
	output, err = cli.run("player", "get", "e2e-player")
	require.NoError(t, err, output)

	var state playerStateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &state))
	assert.Equal(t, int64(20), state.TotalClicks)
}

func TestCLILeaderboardAndStats(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()
	cli := newCLIRunner(t, srv.addr)

	output, err := cli.run("play", "alice", "--clicks", "30", "--interval", "0")
	require.NoError(t, err, output)
	output, err = cli.run("play", "bob", "--clicks", "10", "--interval", "0")
	require.NoError(t, err, output)

	// Leaderboard
	output, err = cli.run("leaderboard", "--limit", "5")
	require.NoError(t, err, output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "alice", board.Entries[0].PlayerID)
	assert.Equal(t, 2, board.TotalRanked)

	// Stats
	output, err = cli.run("stats")
	require.NoError(t, err, output)

	var stats struct {
		TotalPlayers int   `json:"total_players"`
		TotalClicks  int64 `json:"total_clicks"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, 2, stats.TotalPlayers)
	assert.Equal(t, int64(40), stats.TotalClicks)

	// Rank
	output, err = cli.run("player", "rank", "bob")
	require.NoError(t, err, output)

	var rank struct {
		Rank         int `json:"rank"`
		TotalPlayers int `json:"total_players"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &rank))
	assert.Equal(t, 2, rank.Rank)
	assert.Equal(t, 2, rank.TotalPlayers)
}
