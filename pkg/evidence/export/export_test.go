package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"trustmark-hq/polaris/pkg/evidence"
	"trustmark-hq/polaris/pkg/policy"
)

func testRecords() []*evidence.EvidenceRecord {
	return []*evidence.EvidenceRecord{
		{
			RequestID:   "req-1",
			Timestamp:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			RequestText: "complaints by state",
			User:        policy.UserAttributes{Role: "auditor", Region: "west", Purpose: policy.PurposeAnalysis},
			Decision: evidence.DecisionRecord{
				Result:             string(policy.ResultAllowWithConstraints),
				Reason:             "high sensitivity data allowed with masking for auditor",
				ConstraintsApplied: &policy.Constraints{MinGroupSize: 10, ForbidExport: true, MaxRows: 50},
			},
			Metrics:      evidence.MetricsRecord{MetricIDs: []string{"complaint_count"}},
			DataProducts: evidence.ProductsRecord{ProductsUsed: []string{"dp_complaints"}},
			SQL:          evidence.SQLRecord{FinalSQL: "SELECT 1", CanonicalSQL: "SELECT 1", SQLHash: "h1"},
			Results:      evidence.ResultsRecord{RowCount: 5},
		},
		{
			RequestID: "req-2",
			Timestamp: time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
			User:      policy.UserAttributes{Role: "risk_officer"},
			Decision:  evidence.DecisionRecord{Result: string(policy.ResultAllow)},
			SQL:       evidence.SQLRecord{SQLHash: "h2"},
		},
	}
}

func TestJSONExportSingleRecord(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONExporter(true)

	if err := e.Export(context.Background(), testRecords()[:1], &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var rec evidence.EvidenceRecord
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("single record must export as an object: %v", err)
	}
	if rec.RequestID != "req-1" {
		t.Errorf("RequestID = %q", rec.RequestID)
	}
	if rec.Decision.ConstraintsApplied == nil || rec.Decision.ConstraintsApplied.MaxRows != 50 {
		t.Errorf("constraints lost in export: %+v", rec.Decision.ConstraintsApplied)
	}
}

func TestJSONExportMultipleRecords(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONExporter(false)

	if err := e.Export(context.Background(), testRecords(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var recs []evidence.EvidenceRecord
	if err := json.Unmarshal(buf.Bytes(), &recs); err != nil {
		t.Fatalf("multiple records must export as an array: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("exported %d records, want 2", len(recs))
	}
}

func TestJSONExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if buf.String() != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	e := NewCSVExporter(true)

	if err := e.Export(context.Background(), testRecords(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 records", len(rows))
	}
	if rows[0][0] != "request_id" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "req-1" || rows[1][3] != "auditor" {
		t.Errorf("first record row = %v", rows[1])
	}
}
