package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timemate/internal/preferences"
)

func TestWatchSettingsReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TimeMate", "settings.yaml")

	changes := make(chan preferences.Settings, 4)
	watcher, err := WatchSettings(path, nil, func(settings preferences.Settings) {
		changes <- settings
	})
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Close() })

	settings := preferences.DefaultSettings()
	settings.AlertBody = "Break time"
	require.NoError(t, SaveSettings(path, settings))

	select {
	case got := <-changes:
		require.Equal(t, "Break time", got.AlertBody)
	case <-time.After(3 * time.Second):
		t.Fatal("settings change not observed")
	}
}
