package countdown

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timemate_countdown_ticks_total",
	Help: "Number of countdown ticks processed",
})

var completionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timemate_countdown_completions_total",
	Help: "Number of countdowns that reached zero",
})

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "timemate_countdown_operations_total",
	Help: "Number of control operations handled, by operation",
}, []string{"op"})

var notifyFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timemate_countdown_notify_failures_total",
	Help: "Number of completion alerts the notifier failed to deliver",
})

var remainingSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "timemate_countdown_remaining_seconds",
	Help: "Seconds left on the countdown",
})

var runningGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "timemate_countdown_running",
	Help: "1 while the countdown is ticking, 0 otherwise",
})
