package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timemate/internal/core/model"
)

func openBackends(t *testing.T) map[string]*Store {
	t.Helper()
	ctx := context.Background()

	configs := map[string]Config{
		BackendMemory: {Backend: BackendMemory},
		BackendFile:   {Backend: BackendFile, Path: filepath.Join(t.TempDir(), "state")},
		BackendSQLite: {Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "timemate.db")},
		BackendPebble: {Backend: BackendPebble, Path: filepath.Join(t.TempDir(), "pebble")},
	}
	if redisURL := os.Getenv("TIMEMATE_TEST_REDIS_URL"); redisURL != "" {
		configs[BackendRedis] = Config{
			Backend:     BackendRedis,
			RedisURL:    redisURL,
			RedisPrefix: "timemate-test:" + uuid.NewString() + ":",
		}
	}

	stores := make(map[string]*Store, len(configs))
	for name, config := range configs {
		store, err := Open(ctx, config, nil)
		require.NoError(t, err, name)
		t.Cleanup(func() {
			assert.NoError(t, store.Close())
		})
		stores[name] = store
	}
	return stores
}

func TestSnapshotRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC)
	want := model.Snapshot{
		Input:      "00:00:42",
		Remaining:  17,
		Running:    true,
		LastUpdate: &stamp,
	}

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			missing, err := store.LoadSnapshot(ctx)
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, store.SaveSnapshot(ctx, want))

			got, err := store.LoadSnapshot(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, want.Equal(*got), "got %+v", *got)

			idle := model.DefaultSnapshot()
			require.NoError(t, store.SaveSnapshot(ctx, idle))
			got, err = store.LoadSnapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, idle, *got)
		})
	}
}

func TestCorruptSnapshotIsAnError(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.kv.put(ctx, model.StateKey, []byte("{unterminated")))

			got, err := store.LoadSnapshot(ctx)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestPartialSnapshotKeepsDefaults(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.kv.put(ctx, model.StateKey, []byte(`{"remaining": 7}`)))

	got, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultInput, got.Input)
	assert.Equal(t, 7, got.Remaining)
	assert.False(t, got.Running)
}

func TestPresetsRoundTrip(t *testing.T) {
	presets := []model.Preset{
		{ID: "a", Name: "Focus", Color: "#f87171", Duration: "00:25:00"},
		{ID: "b", Name: "Tea", Color: "#34d399", Duration: "00:04:00"},
	}

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := store.LoadPresets(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, store.SavePresets(ctx, presets))
			got, err := store.LoadPresets(ctx)
			require.NoError(t, err)
			assert.Equal(t, presets, got)

			require.NoError(t, store.SavePresets(ctx, nil))
			got, err = store.LoadPresets(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestCorruptPresetsLoadEmpty(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.kv.put(ctx, model.PresetsKey, []byte("not json")))

	got, err := store.LoadPresets(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "floppy"}, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenRequiresPath(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite, BackendPebble} {
		_, err := Open(context.Background(), Config{Backend: backend}, nil)
		assert.Error(t, err, backend)
	}
}

func TestFileStoreWritesYaml(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(context.Background(), Config{Backend: BackendFile, Path: dir}, nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveSnapshot(context.Background(), model.DefaultSnapshot()))

	data, err := os.ReadFile(filepath.Join(dir, model.StateKey+".yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "00:25:00")
	assert.Contains(t, string(data), "remaining: 1500")

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
