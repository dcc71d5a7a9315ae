// Package notify delivers the countdown completion alert.
package notify

import (
	"log/slog"
	"time"

	"fyne.io/fyne/v2"

	"timemate/internal/core/model"
)

// Desktop shows the alert as a native desktop notification.
type Desktop struct {
	app    fyne.App
	logger *slog.Logger
}

// NewDesktop creates a notifier bound to the running fyne app.
func NewDesktop(app fyne.App, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{app: app, logger: logger.With("component", "notify")}
}

// Notify sends the alert. Desktops have no vibration motor, so the pattern
// is only logged.
func (desktop *Desktop) Notify(alert model.Alert) error {
	notification := fyne.NewNotification(alert.Title, alert.Body)
	fyne.Do(func() {
		desktop.app.SendNotification(notification)
	})
	if len(alert.Vibrate) > 0 {
		desktop.logger.Debug("vibration not supported", "pattern", patternMillis(alert.Vibrate))
	}
	return nil
}

// Log writes the alert to a structured logger. It is used in headless mode.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging notifier.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "notify")}
}

func (l *Log) Notify(alert model.Alert) error {
	l.logger.Info(alert.Body, "title", alert.Title, "vibrate", patternMillis(alert.Vibrate))
	return nil
}

func patternMillis(pattern []time.Duration) []int64 {
	out := make([]int64, 0, len(pattern))
	for _, step := range pattern {
		out = append(out, step.Milliseconds())
	}
	return out
}
