package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taptowin/taptowin/internal/model"
)

func newSnapshot(id string, currency int64) *model.Snapshot {
	state := model.NewPlayerState(model.PlayerID(id), time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	state.Currency = currency
	return &model.Snapshot{
		State:   *state,
		SavedAt: time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
	}
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	snap := newSnapshot("player-1", 100)
	snap.State.AddPowerUp("double_click")
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.State.Currency)
	assert.True(t, got.State.OwnsPowerUp("double_click"))
	assert.Equal(t, snap.SavedAt, got.SavedAt)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrSnapshotNotFound)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "player-1.json"), []byte("not json"), 0o600))

	_, err = store.Load(context.Background(), "player-1")
	assert.ErrorIs(t, err, model.ErrMalformedState)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSnapshot("player-1", 100)))
	require.NoError(t, store.Save(ctx, newSnapshot("player-1", 200)))

	got, err := store.Load(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.State.Currency)
}

func TestFileStoreClear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSnapshot("player-1", 100)))
	require.NoError(t, store.Clear(ctx, "player-1"))

	_, err = store.Load(ctx, "player-1")
	assert.ErrorIs(t, err, model.ErrSnapshotNotFound)
}

func TestFileStoreClearMissingIsNoop(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Clear(context.Background(), "missing"))
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")

	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
