package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timemate/internal/core/model"
)

func TestDesktopSendsNotification(t *testing.T) {
	app := test.NewApp()
	t.Cleanup(app.Quit)

	alert := model.DefaultAlert()
	notifier := NewDesktop(app, nil)

	test.AssertNotificationSent(t, fyne.NewNotification(alert.Title, alert.Body), func() {
		require.NoError(t, notifier.Notify(alert))
	})
}

func TestLogWritesAlert(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	require.NoError(t, NewLog(logger).Notify(model.DefaultAlert()))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Your countdown timer has ended!", record["msg"])
	assert.Equal(t, "Timer Finished", record["title"])
	assert.Equal(t, []any{float64(200), float64(100), float64(200)}, record["vibrate"])
	assert.Equal(t, "notify", record["component"])
}
