package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PolicyMetrics tracks metrics for policy evaluation.
//
// Metrics:
//   - trustmark_polaris_policy_decisions_total: decisions by role, result
//   - trustmark_polaris_policy_denials_total: denials by role, reason
//   - trustmark_polaris_policy_constraints_total: constraints applied
//   - trustmark_polaris_policy_duration_seconds: evaluation duration
type PolicyMetrics struct {
	decisionsTotal   *prometheus.CounterVec
	denialsTotal     *prometheus.CounterVec
	constraintsTotal *prometheus.CounterVec
	duration         prometheus.Histogram
}

// NewPolicyMetrics creates and registers policy metrics with the registry.
func NewPolicyMetrics(cfg *Config, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_decisions_total",
				Help:      "Total number of policy decisions",
			},
			[]string{"role", "result"},
		),

		denialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_denials_total",
				Help:      "Total number of policy denials by reason category",
			},
			[]string{"role", "reason"},
		),

		constraintsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_constraints_total",
				Help:      "Total number of policy constraints applied to plans",
			},
			[]string{"constraint"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_duration_seconds",
				Help:      "Duration of policy evaluations in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
	}

	registry.MustRegister(
		pm.decisionsTotal,
		pm.denialsTotal,
		pm.constraintsTotal,
		pm.duration,
	)
	return pm
}

// RecordDecision records a policy evaluation outcome.
func (pm *PolicyMetrics) RecordDecision(role, result string, duration time.Duration) {
	pm.decisionsTotal.WithLabelValues(role, result).Inc()
	pm.duration.Observe(duration.Seconds())
}

// RecordDenial records a denial with its reason category.
func (pm *PolicyMetrics) RecordDenial(role, reason string) {
	pm.denialsTotal.WithLabelValues(role, reason).Inc()
}

// RecordConstraint records the application of a named constraint.
func (pm *PolicyMetrics) RecordConstraint(constraint string) {
	pm.constraintsTotal.WithLabelValues(constraint).Inc()
}
