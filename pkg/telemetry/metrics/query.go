package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics tracks metrics for pipeline runs.
//
// Metrics:
//   - trustmark_polaris_queries_total: run count by role, metric, result
//   - trustmark_polaris_query_duration_seconds: end-to-end run duration
//   - trustmark_polaris_stage_duration_seconds: per-stage duration
//   - trustmark_polaris_result_rows: rows returned per successful run
type QueryMetrics struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec
	resultRows    prometheus.Histogram
}

// NewQueryMetrics creates and registers query metrics with the registry.
func NewQueryMetrics(cfg *Config, registry *prometheus.Registry) *QueryMetrics {
	qm := &QueryMetrics{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "queries_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"role", "metric_id", "result"},
		),

		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "query_duration_seconds",
				Help:      "End-to-end duration of pipeline runs in seconds",
				Buckets:   cfg.StageDurationBuckets,
			},
			[]string{"role", "result"},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual pipeline stages in seconds",
				Buckets:   cfg.StageDurationBuckets,
			},
			[]string{"stage"},
		),

		resultRows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "result_rows",
				Help:      "Rows returned per successful run",
				Buckets:   cfg.RowCountBuckets,
			},
		),
	}

	registry.MustRegister(
		qm.queriesTotal,
		qm.queryDuration,
		qm.stageDuration,
		qm.resultRows,
	)
	return qm
}

// RecordQuery records metrics for a completed pipeline run.
func (qm *QueryMetrics) RecordQuery(role, metricID, result string, duration time.Duration, rows int) {
	qm.queriesTotal.WithLabelValues(role, metricID, result).Inc()
	qm.queryDuration.WithLabelValues(role, result).Observe(duration.Seconds())
	if rows > 0 {
		qm.resultRows.Observe(float64(rows))
	}
}

// RecordStage records the duration of a single pipeline stage.
func (qm *QueryMetrics) RecordStage(stage string, duration time.Duration) {
	qm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
