// Package countdown owns the single countdown timer: its tick driver and the
// get, set_input, start, pause and reset control operations.
package countdown

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timemate/internal/core/hms"
	"timemate/internal/core/model"
)

// Options wires the collaborators of a Service. Nil fields get no-op
// implementations, except Clock and Logger which default to the system ones.
type Options struct {
	Clock     Clock
	Persister Persister
	Publisher Publisher
	Indicator Indicator
	Notifier  Notifier
	Logger    *slog.Logger
}

// Service is the countdown authority. Ticks and control operations are
// serialized by mu and each runs to completion before the next.
type Service struct {
	mu      sync.Mutex
	config  model.CountdownConfig
	options Options
	state   model.Snapshot
	task    *tickTask
	closed  bool

	published model.Snapshot
	logger    *slog.Logger
}

// tickTask is the cancellation handle of one scheduled recurring tick.
type tickTask struct {
	stop chan struct{}
}

// New creates a Service holding the default snapshot.
func New(config model.CountdownConfig, options Options) *Service {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = SystemClock()
	}
	if options.Persister == nil {
		options.Persister = nopPersister{}
	}
	if options.Publisher == nil {
		options.Publisher = nopPublisher{}
	}
	if options.Indicator == nil {
		options.Indicator = nopIndicator{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Service{
		config:    config,
		options:   options,
		state:     model.DefaultSnapshot(),
		published: model.DefaultSnapshot(),
		logger:    options.Logger.With("component", "countdown"),
	}
}

// Restore replaces the default snapshot with the persisted one and resumes
// ticking if it was running. Load failures keep the defaults.
func (svc *Service) Restore(ctx context.Context, loader Loader) model.Snapshot {
	stored, err := loader.LoadSnapshot(ctx)
	if err != nil {
		svc.logger.Warn("failed to load countdown, using defaults", "err", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if stored != nil {
		svc.state = stored.Clone()
		if svc.state.Remaining < 0 {
			svc.state.Remaining = 0
		}
	}
	// the record is published as-is so observers start from the stored value
	svc.published = svc.state.Clone()

	wasRunning := svc.state.Running
	svc.state.Running = false
	if wasRunning && svc.state.Remaining > 0 {
		svc.logger.Info("resuming countdown", "remaining", svc.state.Remaining)
		svc.startLocked()
	} else {
		svc.commitLocked()
	}
	return svc.state.Clone()
}

// UpdateConfig swaps the alert and badge settings. A new tick interval takes
// effect the next time the countdown starts.
func (svc *Service) UpdateConfig(config model.CountdownConfig) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	svc.config = config
	svc.options.Indicator.SetBadge(svc.badgeLocked())
}

// Get returns the current snapshot.
func (svc *Service) Get() model.Snapshot {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	operationsTotal.WithLabelValues("get").Inc()
	return svc.state.Clone()
}

// SetInput stores a new duration and recomputes remaining immediately, even
// while running. A running countdown keeps ticking from the new value.
func (svc *Service) SetInput(value string) model.Snapshot {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	operationsTotal.WithLabelValues("set_input").Inc()

	svc.state.Input = value
	svc.state.Remaining = hms.Parse(value)
	svc.commitLocked()
	svc.logger.Debug("countdown input set", "input", value, "remaining", svc.state.Remaining)
	return svc.state.Clone()
}

// Start moves Idle to Running. It is a no-op while running or when nothing
// is left to count down.
func (svc *Service) Start() model.Snapshot {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	operationsTotal.WithLabelValues("start").Inc()

	if svc.state.Running || svc.state.Remaining <= 0 || svc.closed {
		return svc.state.Clone()
	}
	svc.startLocked()
	svc.logger.Info("countdown started", "remaining", svc.state.Remaining)
	return svc.state.Clone()
}

// Pause cancels the tick task, keeping remaining.
func (svc *Service) Pause() model.Snapshot {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	operationsTotal.WithLabelValues("pause").Inc()

	wasRunning := svc.state.Running
	svc.pauseLocked()
	svc.commitLocked()
	if wasRunning {
		svc.logger.Info("countdown paused", "remaining", svc.state.Remaining)
	}
	return svc.state.Clone()
}

// Reset pauses and restores remaining from the configured input.
func (svc *Service) Reset() model.Snapshot {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	operationsTotal.WithLabelValues("reset").Inc()

	svc.pauseLocked()
	svc.state.Remaining = hms.Parse(svc.state.Input)
	svc.commitLocked()
	svc.logger.Info("countdown reset", "remaining", svc.state.Remaining)
	return svc.state.Clone()
}

// Running reports whether a tick task is scheduled.
func (svc *Service) Running() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.task != nil
}

// Close cancels the tick task. The stored snapshot keeps running=true when
// the countdown was active so the next process resumes it.
func (svc *Service) Close() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.closed = true
	svc.cancelTaskLocked()
}

func (svc *Service) startLocked() {
	now := svc.options.Clock.Now()
	svc.state.Running = true
	svc.state.LastUpdate = &now
	svc.scheduleLocked()
	svc.commitLocked()
}

func (svc *Service) pauseLocked() {
	svc.state.Running = false
	svc.cancelTaskLocked()
}

func (svc *Service) scheduleLocked() {
	svc.cancelTaskLocked()
	task := &tickTask{stop: make(chan struct{})}
	svc.task = task
	ticker := svc.options.Clock.NewTicker(svc.config.TickInterval)
	go svc.run(task, ticker)
}

func (svc *Service) cancelTaskLocked() {
	if svc.task == nil {
		return
	}
	close(svc.task.stop)
	svc.task = nil
}

func (svc *Service) run(task *tickTask, ticker Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-task.stop:
			return
		case <-ticker.C():
			svc.tick(task)
		}
	}
}

// tick performs one decrement for task. Ticks from a cancelled task are
// ignored.
func (svc *Service) tick(task *tickTask) {
	svc.mu.Lock()
	if task == nil || svc.task != task {
		svc.mu.Unlock()
		return
	}

	now := svc.options.Clock.Now()
	if svc.state.Remaining > 0 {
		svc.state.Remaining--
	}
	svc.state.LastUpdate = &now

	completed := svc.state.Remaining <= 0
	if completed {
		svc.cancelTaskLocked()
		svc.state.Running = false
		svc.state.Remaining = 0
	}
	svc.commitLocked()
	alert := svc.config.Alert
	svc.mu.Unlock()

	ticksTotal.Inc()
	if completed {
		completionsTotal.Inc()
		svc.logger.Info("countdown finished")
		svc.notify(alert)
	}
}

// commitLocked pushes the current snapshot to the indicator and persister and
// notifies observers when it differs from the last published value.
func (svc *Service) commitLocked() {
	snapshot := svc.state.Clone()

	svc.options.Indicator.SetBadge(svc.badgeLocked())
	svc.options.Persister.Persist(snapshot)

	remainingSeconds.Set(float64(snapshot.Remaining))
	if snapshot.Running {
		runningGauge.Set(1)
	} else {
		runningGauge.Set(0)
	}

	if svc.published.Equal(snapshot) {
		return
	}
	svc.published = snapshot
	svc.options.Publisher.Publish(model.StateKey)
}

func (svc *Service) badgeLocked() Badge {
	if !svc.state.Running || svc.state.Remaining <= 0 {
		return Badge{}
	}
	color := BadgeColorNormal
	if svc.state.Remaining <= svc.config.WarnThreshold {
		color = BadgeColorWarning
	}
	return Badge{Text: hms.Badge(svc.state.Remaining), Color: color}
}

func (svc *Service) notify(alert model.Alert) {
	if svc.options.Notifier == nil {
		return
	}
	if err := svc.options.Notifier.Notify(alert); err != nil {
		notifyFailures.Inc()
		svc.logger.Warn("failed to deliver completion alert", "err", err)
	}
}

// StateOf maps a snapshot to its tick driver state.
func StateOf(snapshot model.Snapshot) State {
	if snapshot.Running {
		return StateRunning
	}
	return StateIdle
}
