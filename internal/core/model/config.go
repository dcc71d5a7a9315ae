package model

import "time"

// Alert describes the completion notification.
type Alert struct {
	Title   string
	Body    string
	Vibrate []time.Duration
}

// CountdownConfig contains runtime settings for the countdown service.
type CountdownConfig struct {
	TickInterval time.Duration

	// WarnThreshold is the remaining seconds at or below which the badge
	// switches to the warning colour.
	WarnThreshold int

	Alert Alert
}

// DefaultAlert returns the notification shown when a countdown finishes.
func DefaultAlert() Alert {
	return Alert{
		Title:   "Timer Finished",
		Body:    "Your countdown timer has ended!",
		Vibrate: []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond},
	}
}
