package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EvidenceMetrics tracks metrics for the evidence store.
//
// Metrics:
//   - trustmark_polaris_evidence_writes_total: write attempts by status
//   - trustmark_polaris_evidence_pruned_total: records removed by retention
type EvidenceMetrics struct {
	writesTotal *prometheus.CounterVec
	prunedTotal prometheus.Counter
}

// NewEvidenceMetrics creates and registers evidence metrics with the registry.
func NewEvidenceMetrics(cfg *Config, registry *prometheus.Registry) *EvidenceMetrics {
	em := &EvidenceMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_writes_total",
				Help:      "Total number of evidence store write attempts",
			},
			[]string{"status"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_pruned_total",
				Help:      "Total number of evidence records removed by retention",
			},
		),
	}

	registry.MustRegister(em.writesTotal, em.prunedTotal)
	return em
}

// RecordWrite records an evidence store write attempt.
func (em *EvidenceMetrics) RecordWrite(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	em.writesTotal.WithLabelValues(status).Inc()
}

// RecordPruned records records removed by the retention pruner.
func (em *EvidenceMetrics) RecordPruned(count int64) {
	if count > 0 {
		em.prunedTotal.Add(float64(count))
	}
}
