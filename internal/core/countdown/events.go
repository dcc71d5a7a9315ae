package countdown

import (
	"context"
	"time"

	"timemate/internal/core/model"
)

// State represents the current tick driver mode.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Badge colours for the visual countdown indicator.
const (
	BadgeColorNormal  = "#60a5fa"
	BadgeColorWarning = "#f87171"
)

// Badge is the compact countdown indicator. An empty Text clears it.
type Badge struct {
	Text  string
	Color string
}

// Indicator displays the badge, e.g. a tray title.
type Indicator interface {
	SetBadge(badge Badge)
}

// Notifier delivers the completion alert.
type Notifier interface {
	Notify(alert model.Alert) error
}

// Persister accepts snapshots for best-effort storage. Persist must not block.
type Persister interface {
	Persist(snapshot model.Snapshot)
}

// Publisher announces that the value under a storage key changed.
type Publisher interface {
	Publish(key string)
}

// Loader reads a previously persisted snapshot; nil means none was stored.
type Loader interface {
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// Clock abstracts time so tests can drive ticks by hand.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the recurring trigger behind the tick driver.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemClock struct{}

type systemTicker struct {
	ticker *time.Ticker
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{ticker: time.NewTicker(d)}
}

func (ticker systemTicker) C() <-chan time.Time {
	return ticker.ticker.C
}

func (ticker systemTicker) Stop() {
	ticker.ticker.Stop()
}

type nopIndicator struct{}

func (nopIndicator) SetBadge(Badge) {}

type nopPersister struct{}

func (nopPersister) Persist(model.Snapshot) {}

type nopPublisher struct{}

func (nopPublisher) Publish(string) {}
