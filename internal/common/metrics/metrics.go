// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_processed_total",
			Help: "Total number of orders processed by the ingestion pipeline",
		},
		[]string{"outcome"},
	)

	ClassificationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classification_fallbacks_total",
			Help: "Total number of classifications that degraded to the fallback result",
		},
	)

	EscalationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalations_dispatched_total",
			Help: "Total number of escalation actions dispatched",
		},
		[]string{"action", "status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ingest_pipeline_duration_seconds",
			Help: "Duration of the full ingestion pipeline in seconds",
		},
	)

	ReportSectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_section_failures_total",
			Help: "Total number of report sections that failed and rendered empty",
		},
		[]string{"section"},
	)
)
