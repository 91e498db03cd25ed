package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled turns metric recording on.
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	Subsystem string `yaml:"subsystem"`

	// StageDurationBuckets are histogram buckets for pipeline stage
	// durations in seconds.
	StageDurationBuckets []float64 `yaml:"stage_duration_buckets"`

	// RowCountBuckets are histogram buckets for result row counts.
	RowCountBuckets []float64 `yaml:"row_count_buckets"`
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Namespace: "trustmark",
		Subsystem: "polaris",
	}
}

// Collector owns the Prometheus registry and all pipeline metric groups.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	queryMetrics    *QueryMetrics
	policyMetrics   *PolicyMetrics
	qualityMetrics  *QualityMetrics
	evidenceMetrics *EvidenceMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. A nil registry gets a fresh one.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "trustmark"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "polaris"
	}
	if len(cfg.StageDurationBuckets) == 0 {
		// Plan building and policy evaluation are sub-millisecond;
		// warehouse execution dominates the tail.
		cfg.StageDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0}
	}
	if len(cfg.RowCountBuckets) == 0 {
		cfg.RowCountBuckets = []float64{1, 10, 50, 100, 500, 1000, 5000}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.queryMetrics = NewQueryMetrics(cfg, registry)
	c.policyMetrics = NewPolicyMetrics(cfg, registry)
	c.qualityMetrics = NewQualityMetrics(cfg, registry)
	c.evidenceMetrics = NewEvidenceMetrics(cfg, registry)

	return c
}

// RecordQuery records metrics for a completed pipeline run.
func (c *Collector) RecordQuery(role, metricID, result string, duration time.Duration, rows int) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("query:%s:%s:%s", role, metricID, result)
	if !c.cardinalityLimiter.Allow(labelSet) {
		metricID = "other"
	}

	c.queryMetrics.RecordQuery(role, metricID, result, duration, rows)
}

// RecordStage records the duration of a single pipeline stage.
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.queryMetrics.RecordStage(stage, duration)
}

// RecordPolicyDecision records a policy evaluation outcome.
func (c *Collector) RecordPolicyDecision(role, result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.policyMetrics.RecordDecision(role, result, duration)
}

// RecordPolicyDenial records a denial with its reason category.
func (c *Collector) RecordPolicyDenial(role, reason string) {
	if !c.config.Enabled {
		return
	}
	c.policyMetrics.RecordDenial(role, reason)
}

// RecordConstraint records the application of a named policy constraint.
func (c *Collector) RecordConstraint(constraint string) {
	if !c.config.Enabled {
		return
	}
	c.policyMetrics.RecordConstraint(constraint)
}

// RecordQualityCheck records a quality gate check for a data product.
func (c *Collector) RecordQualityCheck(dataProduct string, queryable bool) {
	if !c.config.Enabled {
		return
	}
	c.qualityMetrics.RecordCheck(dataProduct, queryable)
}

// RecordQualityBlock records a query blocked by the quality gate.
func (c *Collector) RecordQualityBlock(dataProduct string) {
	if !c.config.Enabled {
		return
	}
	c.qualityMetrics.RecordBlock(dataProduct)
}

// RecordEvidenceWrite records an evidence store write attempt.
func (c *Collector) RecordEvidenceWrite(success bool) {
	if !c.config.Enabled {
		return
	}
	c.evidenceMetrics.RecordWrite(success)
}

// RecordEvidencePruned records records removed by the retention pruner.
func (c *Collector) RecordEvidencePruned(count int64) {
	if !c.config.Enabled {
		return
	}
	c.evidenceMetrics.RecordPruned(count)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the
// specified maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label set is allowed. Returns true if the
// label set already exists or the limit has not been reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
