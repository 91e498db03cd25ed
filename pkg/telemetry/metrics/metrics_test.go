package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string)
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestRecordQuery(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)

	c.RecordQuery("auditor", "complaint_count", "executed", 120*time.Millisecond, 42)
	c.RecordQuery("auditor", "complaint_count", "executed", 80*time.Millisecond, 10)
	c.RecordQuery("branch_manager", "complaint_count", "denied", time.Millisecond, 0)

	got := counterValue(t, c.Registry(), "trustmark_polaris_queries_total", map[string]string{
		"role":      "auditor",
		"metric_id": "complaint_count",
		"result":    "executed",
	})
	if got != 2 {
		t.Errorf("queries_total{executed} = %v, want 2", got)
	}

	denied := counterValue(t, c.Registry(), "trustmark_polaris_queries_total", map[string]string{
		"result": "denied",
	})
	if denied != 1 {
		t.Errorf("queries_total{denied} = %v, want 1", denied)
	}
}

func TestRecordPolicyDecision(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)

	c.RecordPolicyDecision("auditor", "ALLOW_WITH_CONSTRAINTS", time.Millisecond)
	c.RecordPolicyDenial("branch_manager", "region_scope")
	c.RecordConstraint("min_group_size")
	c.RecordConstraint("min_group_size")

	if got := counterValue(t, c.Registry(), "trustmark_polaris_policy_decisions_total", map[string]string{
		"role": "auditor", "result": "ALLOW_WITH_CONSTRAINTS",
	}); got != 1 {
		t.Errorf("policy_decisions_total = %v, want 1", got)
	}
	if got := counterValue(t, c.Registry(), "trustmark_polaris_policy_constraints_total", map[string]string{
		"constraint": "min_group_size",
	}); got != 2 {
		t.Errorf("policy_constraints_total = %v, want 2", got)
	}
}

func TestRecordQualityAndEvidence(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)

	c.RecordQualityCheck("dp_complaints", true)
	c.RecordQualityCheck("dp_call_reports", false)
	c.RecordQualityBlock("dp_call_reports")
	c.RecordEvidenceWrite(true)
	c.RecordEvidenceWrite(false)
	c.RecordEvidencePruned(7)

	if got := counterValue(t, c.Registry(), "trustmark_polaris_quality_checks_total", map[string]string{
		"data_product": "dp_call_reports", "outcome": "blocked",
	}); got != 1 {
		t.Errorf("quality_checks_total{blocked} = %v, want 1", got)
	}
	if got := counterValue(t, c.Registry(), "trustmark_polaris_evidence_writes_total", map[string]string{
		"status": "error",
	}); got != 1 {
		t.Errorf("evidence_writes_total{error} = %v, want 1", got)
	}
	if got := counterValue(t, c.Registry(), "trustmark_polaris_evidence_pruned_total", nil); got != 7 {
		t.Errorf("evidence_pruned_total = %v, want 7", got)
	}
}

func TestDisabledCollectorRecordsNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, nil)

	c.RecordQuery("auditor", "complaint_count", "executed", time.Millisecond, 5)

	if got := counterValue(t, c.Registry(), "trustmark_polaris_queries_total", nil); got != 0 {
		t.Errorf("disabled collector recorded %v queries", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector(DefaultConfig(), nil)
	c.RecordQuery("auditor", "complaint_count", "executed", time.Millisecond, 5)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "trustmark_polaris_queries_total") {
		t.Error("metrics endpoint missing queries_total")
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("limiter rejected label sets under the limit")
	}
	if cl.Allow("c") {
		t.Error("limiter allowed a label set over the limit")
	}
	if !cl.Allow("a") {
		t.Error("limiter rejected an existing label set")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}
