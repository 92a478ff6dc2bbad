// Package telemetry defines the Prometheus collectors for the collection
// run. Collectors register once at package init and are exposed by the ops
// listener.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "camsnap_cycles_total",
			Help: "Total polling cycles, labeled by whether the fetch phase ran.",
		},
		[]string{"state"},
	)

	fetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "camsnap_fetch_attempts_total",
			Help: "Total per-camera fetch attempts, labeled by result.",
		},
		[]string{"result"},
	)

	fetchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "camsnap_fetch_duration_seconds",
			Help:    "Histogram of per-camera fetch latencies.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	persistedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camsnap_persisted_bytes_total",
			Help: "Total image bytes written to the local output tree.",
		},
	)

	mirrorFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camsnap_mirror_failures_total",
			Help: "Total remote mirror copies that failed.",
		},
	)
)

// ObserveCycle counts one finished cycle.
func ObserveCycle(skipped bool) {
	state := "active"
	if skipped {
		state = "skipped"
	}
	cyclesTotal.WithLabelValues(state).Inc()
}

// ObserveAttempt counts one per-camera attempt by outcome.
func ObserveAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	fetchAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveFetchDuration records one fetch latency.
func ObserveFetchDuration(d time.Duration) {
	fetchDurationSeconds.Observe(d.Seconds())
}

// AddPersistedBytes accounts for bytes durably written locally.
func AddPersistedBytes(n int) {
	persistedBytesTotal.Add(float64(n))
}

// IncMirrorFailure counts one failed mirror copy.
func IncMirrorFailure() {
	mirrorFailuresTotal.Inc()
}
