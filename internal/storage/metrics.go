package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var snapshotsSaved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timemate_storage_snapshots_saved_total",
	Help: "Number of countdown snapshots written to the backend",
})

var snapshotSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timemate_storage_snapshot_save_failures_total",
	Help: "Number of countdown snapshot writes that failed",
})

var snapshotsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timemate_storage_snapshots_coalesced_total",
	Help: "Number of snapshots replaced by a newer one before being written",
})

var snapshotSaveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "timemate_storage_snapshot_save_seconds",
	Help:    "Time spent writing one countdown snapshot",
	Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
})
