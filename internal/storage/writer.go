package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timemate/internal/core/model"
)

// SnapshotSaver is the write side of a Store.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snapshot model.Snapshot) error
}

// Writer persists snapshots off the caller's goroutine. Only the newest
// pending snapshot is kept, so a slow backend delays writes but never the
// countdown, and the last write wins.
type Writer struct {
	saver   SnapshotSaver
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending *model.Snapshot

	wake      chan struct{}
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewWriter starts the background writer. timeout bounds each save.
func NewWriter(saver SnapshotSaver, timeout time.Duration, logger *slog.Logger) *Writer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	writer := &Writer{
		saver:   saver,
		timeout: timeout,
		logger:  logger.With("component", "snapshot_writer"),
		wake:    make(chan struct{}, 1),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go writer.run()
	return writer
}

// Persist queues snapshot, replacing any snapshot not yet written.
func (writer *Writer) Persist(snapshot model.Snapshot) {
	snapshot = snapshot.Clone()

	writer.mu.Lock()
	if writer.pending != nil {
		snapshotsCoalesced.Inc()
	}
	writer.pending = &snapshot
	writer.mu.Unlock()

	select {
	case writer.wake <- struct{}{}:
	default:
	}
}

// Close writes the pending snapshot and stops the writer.
func (writer *Writer) Close(ctx context.Context) error {
	writer.closeOnce.Do(func() {
		close(writer.closing)
	})
	select {
	case <-writer.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (writer *Writer) run() {
	defer close(writer.done)

	for {
		select {
		case <-writer.wake:
			writer.drain()
		case <-writer.closing:
			writer.drain()
			return
		}
	}
}

func (writer *Writer) drain() {
	for {
		writer.mu.Lock()
		snapshot := writer.pending
		writer.pending = nil
		writer.mu.Unlock()

		if snapshot == nil {
			return
		}
		writer.save(*snapshot)
	}
}

func (writer *Writer) save(snapshot model.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), writer.timeout)
	defer cancel()

	start := time.Now()
	err := writer.saver.SaveSnapshot(ctx, snapshot)
	snapshotSaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		snapshotSaveFailures.Inc()
		writer.logger.Warn("failed to persist countdown", "err", err, "remaining", snapshot.Remaining)
		return
	}
	snapshotsSaved.Inc()
}
