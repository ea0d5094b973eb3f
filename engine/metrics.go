package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meter_analysis_jobs_processed_total",
			Help: "Total number of completed analysis jobs",
		},
	)

	jobsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meter_analysis_jobs_dropped_total",
			Help: "Total number of jobs dropped because the queue was full",
		},
	)

	anomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meter_anomalies_detected_total",
			Help: "Total number of anomalies detected",
		},
		[]string{"meter_id"},
	)

	analysisDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meter_analysis_duration_seconds",
			Help:    "Analysis duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
