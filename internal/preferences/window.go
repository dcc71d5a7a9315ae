package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Backends offered by the settings window.
var Backends = []string{"file", "sqlite", "pebble", "redis", "memory"}

// Window handles the settings UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     func(Settings)
	warn       *widget.Entry
	alertTitle *widget.Entry
	alertBody  *widget.Entry
	vibrate    *widget.Entry
	backend    *widget.Select
	storePath  *widget.Entry
	redisURL   *widget.Entry
}

// NewWindow creates a settings window.
func NewWindow(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("TimeMate Settings")

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		warn:       widget.NewEntry(),
		alertTitle: widget.NewEntry(),
		alertBody:  widget.NewEntry(),
		vibrate:    widget.NewEntry(),
		backend:    widget.NewSelect(Backends, nil),
		storePath:  widget.NewEntry(),
		redisURL:   widget.NewEntry(),
	}
	prefs.vibrate.SetPlaceHolder("200,100,200")
	prefs.storePath.SetPlaceHolder("default")
	prefs.redisURL.SetPlaceHolder("redis://localhost:6379/0")

	form := container.NewVBox(
		widget.NewLabelWithStyle("Countdown", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Warn when below"), prefs.warn, widget.NewLabel("sec")),
		widget.NewLabel("Alert title"),
		prefs.alertTitle,
		widget.NewLabel("Alert message"),
		prefs.alertBody,
		container.NewHBox(widget.NewLabel("Vibration pattern"), prefs.vibrate, widget.NewLabel("ms")),
		widget.NewLabelWithStyle("Storage (applied on restart)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Backend"), prefs.backend),
		widget.NewLabel("Path"),
		prefs.storePath,
		widget.NewLabel("Redis URL"),
		prefs.redisURL,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 480))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the settings window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.warn.SetText(strconv.Itoa(settings.WarnThreshold))
	prefs.alertTitle.SetText(settings.AlertTitle)
	prefs.alertBody.SetText(settings.AlertBody)
	prefs.vibrate.SetText(FormatPattern(settings.Vibrate))
	prefs.backend.SetSelected(settings.Backend)
	prefs.storePath.SetText(settings.StorePath)
	prefs.redisURL.SetText(settings.RedisURL)
}

// Settings returns the values the window currently holds.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if seconds, err := strconv.Atoi(strings.TrimSpace(prefs.warn.Text)); err == nil && seconds >= 0 {
		settings.WarnThreshold = seconds
	}
	if title := strings.TrimSpace(prefs.alertTitle.Text); title != "" {
		settings.AlertTitle = title
	}
	if body := strings.TrimSpace(prefs.alertBody.Text); body != "" {
		settings.AlertBody = body
	}
	if pattern, err := ParsePattern(prefs.vibrate.Text); err == nil {
		settings.Vibrate = pattern
	}
	if prefs.backend.Selected != "" {
		settings.Backend = prefs.backend.Selected
	}
	settings.StorePath = strings.TrimSpace(prefs.storePath.Text)
	settings.RedisURL = strings.TrimSpace(prefs.redisURL.Text)

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

// FormatPattern renders a vibration pattern as comma separated milliseconds.
func FormatPattern(pattern []time.Duration) string {
	parts := make([]string, 0, len(pattern))
	for _, step := range pattern {
		parts = append(parts, strconv.FormatInt(step.Milliseconds(), 10))
	}
	return strings.Join(parts, ",")
}

// ParsePattern is the inverse of FormatPattern. Blank input is an empty
// pattern.
func ParsePattern(value string) ([]time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return []time.Duration{}, nil
	}
	fields := strings.Split(value, ",")
	pattern := make([]time.Duration, 0, len(fields))
	for _, field := range fields {
		millis, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || millis < 0 {
			return nil, fmt.Errorf("invalid vibration step %q", field)
		}
		pattern = append(pattern, time.Duration(millis)*time.Millisecond)
	}
	return pattern, nil
}
