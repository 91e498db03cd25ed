package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QualityMetrics tracks metrics for the data quality gate.
//
// Metrics:
//   - trustmark_polaris_quality_checks_total: gate checks by product, outcome
//   - trustmark_polaris_quality_blocks_total: queries blocked by product
type QualityMetrics struct {
	checksTotal *prometheus.CounterVec
	blocksTotal *prometheus.CounterVec
}

// NewQualityMetrics creates and registers quality metrics with the registry.
func NewQualityMetrics(cfg *Config, registry *prometheus.Registry) *QualityMetrics {
	qm := &QualityMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quality_checks_total",
				Help:      "Total number of quality gate checks per data product",
			},
			[]string{"data_product", "outcome"},
		),

		blocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quality_blocks_total",
				Help:      "Total number of queries blocked by the quality gate",
			},
			[]string{"data_product"},
		),
	}

	registry.MustRegister(qm.checksTotal, qm.blocksTotal)
	return qm
}

// RecordCheck records a quality gate check for a data product.
func (qm *QualityMetrics) RecordCheck(dataProduct string, queryable bool) {
	outcome := "queryable"
	if !queryable {
		outcome = "blocked"
	}
	qm.checksTotal.WithLabelValues(dataProduct, outcome).Inc()
}

// RecordBlock records a query blocked by the quality gate.
func (qm *QualityMetrics) RecordBlock(dataProduct string) {
	qm.blocksTotal.WithLabelValues(dataProduct).Inc()
}
