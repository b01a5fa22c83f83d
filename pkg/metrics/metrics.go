package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics for a benchmark orchestration run.
// Using promauto for automatic registration with the default registry.
var (
	// JobsRunning tracks jobs currently executing.
	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "benchorch",
			Subsystem: "jobs",
			Name:      "running",
			Help:      "Number of benchmark jobs currently running",
		},
	)

	// JobsTotal counts finished jobs by status.
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchorch",
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Total number of finished benchmark jobs by status",
		},
		[]string{"status"},
	)

	// JobDuration tracks per-job wall time.
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "benchorch",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Duration of benchmark jobs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 15), // 0.1s to ~1.8h
		},
		[]string{"job"},
	)

	// OutputLines counts forwarded job output lines.
	OutputLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchorch",
			Subsystem: "jobs",
			Name:      "output_lines_total",
			Help:      "Total output lines forwarded, per stream",
		},
		[]string{"stream"},
	)

	// ArtifactsFound counts artifact lookups by result.
	ArtifactsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchorch",
			Subsystem: "artifacts",
			Name:      "lookups_total",
			Help:      "Artifact lookups by result (found or missing)",
		},
		[]string{"result"},
	)
)

// RecordJob records metrics for a settled job.
func RecordJob(name, status string, durationSeconds float64) {
	JobsTotal.WithLabelValues(status).Inc()
	JobDuration.WithLabelValues(name).Observe(durationSeconds)
}

// Serve exposes /metrics on addr for the lifetime of the run. Long benchmark
// suites can be watched live; the listener dies with the process, so there is
// nothing to tear down.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
