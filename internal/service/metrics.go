package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	versionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_versions_recorded_total",
			Help: "Versions appended to the audit trail",
		},
		[]string{"type"},
	)

	mediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by bucket and outcome",
		},
		[]string{"bucket", "result"},
	)
)
