package model

import "time"

// Storage keys shared by every persistence backend.
const (
	StateKey   = "timemate_countdown"
	PresetsKey = "timer_presets"
)

// Default countdown configuration.
const (
	DefaultInput     = "00:25:00"
	DefaultRemaining = 1500
)

// Snapshot is the full countdown record returned by every control operation.
type Snapshot struct {
	Input      string     `json:"input" yaml:"input"`
	Remaining  int        `json:"remaining" yaml:"remaining"`
	Running    bool       `json:"running" yaml:"running"`
	LastUpdate *time.Time `json:"lastUpdate" yaml:"lastUpdate"`
}

// DefaultSnapshot returns the record used before anything was persisted.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Input:     DefaultInput,
		Remaining: DefaultRemaining,
	}
}

// Clone returns a copy that shares no memory with snapshot.
func (snapshot Snapshot) Clone() Snapshot {
	if snapshot.LastUpdate != nil {
		stamp := *snapshot.LastUpdate
		snapshot.LastUpdate = &stamp
	}
	return snapshot
}

// Equal reports whether two snapshots would persist identically.
func (snapshot Snapshot) Equal(other Snapshot) bool {
	if snapshot.Input != other.Input ||
		snapshot.Remaining != other.Remaining ||
		snapshot.Running != other.Running {
		return false
	}
	if snapshot.LastUpdate == nil || other.LastUpdate == nil {
		return snapshot.LastUpdate == nil && other.LastUpdate == nil
	}
	return snapshot.LastUpdate.Equal(*other.LastUpdate)
}

// Preset is a named, coloured duration the user can apply to the countdown.
type Preset struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Color    string `json:"color" yaml:"color"`
	Duration string `json:"duration" yaml:"duration"`
}
