package publication

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publication_transitions_total",
			Help: "Status transitions applied to content records",
		},
		[]string{"type", "status"},
	)

	inconsistentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publication_inconsistent_records_total",
			Help: "Records found with status and scheduled_at out of agreement",
		},
		[]string{"table"},
	)

	sweepPromotedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publication_sweep_promoted_total",
			Help: "Scheduled records promoted to published by the sweeper",
		},
		[]string{"table"},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "publication_sweep_duration_seconds",
			Help:    "Duration of one sweep over all schedulable tables",
			Buckets: prometheus.DefBuckets,
		},
	)
)
