package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransactionsBegun counts every successful Begin.
	TransactionsBegun = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kvengine_transactions_begun_total",
			Help: "Total number of transactions begun",
		},
	)

	// TransactionsCommitted counts every successful Commit.
	TransactionsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kvengine_transactions_committed_total",
			Help: "Total number of transactions committed",
		},
	)

	// TransactionsAborted counts every Commit that failed validation and
	// was rolled back with a RetryError.
	TransactionsAborted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kvengine_transactions_aborted_total",
			Help: "Total number of transactions rolled back by the validation predicate",
		},
	)

	// InFlightTransactions tracks the current size of the engine's
	// by-id index.
	InFlightTransactions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kvengine_transactions_in_flight",
			Help: "Number of transactions currently live (between Begin and a terminal Commit)",
		},
	)

	// CommitLatency times the full Commit call, validation included.
	CommitLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kvengine_commit_duration_seconds",
			Help:    "Time taken by Commit, including validation, in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ReplayAttempts counts every invocation of a replayed closure,
	// including the first.
	ReplayAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kvengine_replay_attempts_total",
			Help: "Total number of closure invocations made by the replay coordinator",
		},
	)

	// ReplayGaveUp counts every time the replay coordinator exhausted
	// its retry budget.
	ReplayGaveUp = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kvengine_replay_gave_up_total",
			Help: "Total number of replay runs that exhausted their retry budget",
		},
	)
)

func init() {
	prometheus.MustRegister(TransactionsBegun)
	prometheus.MustRegister(TransactionsCommitted)
	prometheus.MustRegister(TransactionsAborted)
	prometheus.MustRegister(InFlightTransactions)
	prometheus.MustRegister(CommitLatency)
	prometheus.MustRegister(ReplayAttempts)
	prometheus.MustRegister(ReplayGaveUp)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
