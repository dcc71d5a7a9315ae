package presets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timemate/internal/core/model"
	"timemate/internal/core/observer"
	"timemate/internal/storage"
)

type failingStore struct {
	loadErr error
	saveErr error
}

func (store failingStore) LoadPresets(context.Context) ([]model.Preset, error) {
	return nil, store.loadErr
}

func (store failingStore) SavePresets(context.Context, []model.Preset) error {
	return store.saveErr
}

func TestAddListRemove(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	manager := NewManager(store)

	focus, err := manager.Add(ctx, "  Focus ", "0:25:0", "")
	require.NoError(t, err)
	assert.Equal(t, "Focus", focus.Name)
	assert.Equal(t, "00:25:00", focus.Duration)
	assert.Equal(t, Palette[0], focus.Color)
	assert.NotEmpty(t, focus.ID)

	tea, err := manager.Add(ctx, "Tea", "00:04:00", "#34D399")
	require.NoError(t, err)
	assert.Equal(t, "#34d399", tea.Color)

	list, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Preset{focus, tea}, list)

	// persisted for the next process
	reloaded, err := NewManager(store).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, reloaded)

	got, err := manager.Get(ctx, tea.ID)
	require.NoError(t, err)
	assert.Equal(t, tea, got)

	require.NoError(t, manager.Remove(ctx, focus.ID))
	list, err = manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Preset{tea}, list)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	manager := NewManager(storage.NewMemoryStore())

	_, err := manager.Add(context.Background(), "   ", "00:01:00", "")
	assert.ErrorIs(t, err, ErrInvalidPreset)

	_, err = manager.Add(context.Background(), "Odd", "00:01:00", "#000000")
	assert.ErrorIs(t, err, ErrInvalidPreset)
}

func TestUnknownPreset(t *testing.T) {
	manager := NewManager(storage.NewMemoryStore())

	_, err := manager.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPresetNotFound)
	assert.ErrorIs(t, manager.Remove(context.Background(), "missing"), ErrPresetNotFound)
}

func TestFailedSaveLeavesCacheUntouched(t *testing.T) {
	manager := NewManager(failingStore{saveErr: errors.New("read-only")})

	_, err := manager.Add(context.Background(), "Focus", "00:25:00", "")
	assert.Error(t, err)

	list, err := manager.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLoadErrorIsReturned(t *testing.T) {
	manager := NewManager(failingStore{loadErr: errors.New("offline")})
	_, err := manager.List(context.Background())
	assert.Error(t, err)
}

func TestChangesArePublished(t *testing.T) {
	hub := observer.NewHub()
	defer hub.Close()
	subscription := hub.Subscribe(4)
	manager := NewManager(storage.NewMemoryStore()).WithPublisher(hub)

	preset, err := manager.Add(context.Background(), "Focus", "00:25:00", "")
	require.NoError(t, err)
	require.NoError(t, manager.Remove(context.Background(), preset.ID))

	for i := 0; i < 2; i++ {
		notification := <-subscription.C
		assert.Equal(t, model.PresetsKey, notification.Key)
	}

	_, err = manager.Add(context.Background(), "", "00:25:00", "")
	require.Error(t, err)
	assert.Empty(t, subscription.C)
}
