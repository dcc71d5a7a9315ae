// Package resources provides the icons used by the tray and windows.
package resources

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// AppIcon is the application and window icon.
func AppIcon() fyne.Resource {
	return theme.HistoryIcon()
}

// TrayIcon returns the tray icon for the countdown state.
func TrayIcon(running bool) fyne.Resource {
	if running {
		return theme.MediaPlayIcon()
	}
	return theme.MediaPauseIcon()
}
