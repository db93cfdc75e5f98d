// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Scoring engine.
var (
	ScreeningDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_decisions_total",
			Help: "Applications decided, by scoring path and selection status",
		},
		[]string{"path", "status"},
	)

	ScreeningRowFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_row_failures_total",
			Help: "Rows that could not be scored, by error code",
		},
		[]string{"code"},
	)

	ClassifierPredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_predictions_total",
			Help: "Labels returned by the classifier",
		},
		[]string{"label"},
	)

	ClassifierPredictDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_predict_duration_seconds",
			Help:    "Latency of classifier Predict calls",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"outcome"},
	)

	ClassifierCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_cache_lookups_total",
			Help: "Prediction cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
