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

	FeedbackItemsAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_items_analyzed_total",
			Help: "Total number of feedback items run through the analyzer",
		},
	)

	FeedbackUrgencyScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedback_urgency_score",
			Help:    "Urgency scores of analyzed feedback items",
			Buckets: []float64{10, 25, 40, 50, 60, 75, 90, 100},
		},
	)

	// result is hit, miss or error.
	FeedbackAnalysisCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_analysis_cache_total",
			Help: "Analysis cache lookups by result",
		},
		[]string{"result"},
	)

	FeedbackReviewed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_items_reviewed_total",
			Help: "Total number of feedback items marked as reviewed",
		},
	)
)
