package preferences

import (
	"time"

	"timemate/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	TickInterval  time.Duration
	WarnThreshold int

	AlertTitle string
	AlertBody  string
	Vibrate    []time.Duration

	Backend       string
	StorePath     string
	RedisURL      string
	RedisPrefix   string
	ListenAddress string
}

// DefaultSettings returns default settings for TimeMate.
func DefaultSettings() Settings {
	alert := model.DefaultAlert()
	return Settings{
		TickInterval:  time.Second,
		WarnThreshold: 10,
		AlertTitle:    alert.Title,
		AlertBody:     alert.Body,
		Vibrate:       alert.Vibrate,
		Backend:       "file",
		RedisPrefix:   "timemate:",
		ListenAddress: "127.0.0.1:7425",
	}
}

// CountdownConfig converts settings to CountdownConfig.
func (settings Settings) CountdownConfig() model.CountdownConfig {
	return model.CountdownConfig{
		TickInterval:  settings.TickInterval,
		WarnThreshold: settings.WarnThreshold,
		Alert: model.Alert{
			Title:   settings.AlertTitle,
			Body:    settings.AlertBody,
			Vibrate: append([]time.Duration(nil), settings.Vibrate...),
		},
	}
}
