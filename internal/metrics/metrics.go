// Package metrics exposes prometheus collectors for pipeline outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts finished pipeline runs by terminal status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claims_pipeline",
		Name:      "runs_total",
		Help:      "Finished pipeline runs by terminal status.",
	}, []string{"status"})

	// StageRetries counts retry attempts against remote capabilities.
	StageRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claims_pipeline",
		Name:      "stage_retries_total",
		Help:      "Retries of remote capability calls by stage.",
	}, []string{"stage"})

	// StageDuration observes per-stage wall time.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "claims_pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall time per pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"stage"})
)
