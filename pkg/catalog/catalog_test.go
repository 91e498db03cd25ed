package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testCatalog() *Catalog {
	metrics := []*Metric{
		{
			MetricID:          "complaint_count",
			Name:              "Complaint Count",
			Version:           "1.2.0",
			Description:       "Number of consumer complaints received",
			DataProduct:       "dp_complaints",
			AllowedDimensions: []string{"state", "product", "date_month", "complaint_quarter"},
			AllowedFilters:    []string{"state", "region", "date_range", "year"},
		},
		{
			MetricID:          "npa_ratio",
			Name:              "Non-Performing Asset Ratio",
			Version:           "1.0.0",
			Description:       "Average ratio of non-performing assets to total assets",
			DataProduct:       "dp_call_reports",
			AllowedDimensions: []string{"quarter", "bank_region"},
			AllowedFilters:    []string{"year", "region"},
		},
	}
	products := []*DataProduct{
		{
			ID:      "dp_complaints",
			Name:    "Consumer Complaints",
			Version: "2.0.0",
			Columns: []ColumnRef{
				{Name: "state", Sensitivity: SensitivityLow},
				{Name: "product", Sensitivity: SensitivityLow},
				{Name: "date_month", Sensitivity: SensitivityLow},
				{Name: "complaint_quarter", Sensitivity: SensitivityLow},
				{Name: "consumer_narrative", Sensitivity: SensitivityHigh},
			},
			RegionColumn: "region",
			DateColumn:   "date_received",
			GrainColumns: map[string]string{"month": "date_month", "quarter": "complaint_quarter"},
		},
		{
			ID:      "dp_call_reports",
			Name:    "Bank Call Reports",
			Version: "1.1.0",
			Columns: []ColumnRef{
				{Name: "quarter", Sensitivity: SensitivityLow},
				{Name: "bank_region", Sensitivity: SensitivityLow},
				{Name: "net_income", Sensitivity: SensitivityMed},
				{Name: "total_assets", Sensitivity: SensitivityMed},
			},
			RegionColumn: "bank_region",
			GrainColumns: map[string]string{"quarter": "quarter"},
		},
	}
	return New(metrics, products)
}

func TestSensitivityOrdering(t *testing.T) {
	if !(SensitivityLow.Rank() < SensitivityMed.Rank() && SensitivityMed.Rank() < SensitivityHigh.Rank()) {
		t.Error("sensitivity ranks are not ordered LOW < MED < HIGH")
	}
	if Sensitivity("BOGUS").Rank() <= SensitivityHigh.Rank() {
		t.Error("unknown sensitivity must rank above HIGH")
	}
	if !SensitivityMed.AtMost(SensitivityHigh) {
		t.Error("MED should be at most HIGH")
	}
	if SensitivityHigh.AtMost(SensitivityMed) {
		t.Error("HIGH should not be at most MED")
	}
}

func TestColumnSensitivity_UnknownFailsClosed(t *testing.T) {
	c := testCatalog()
	dp := c.DataProduct("dp_complaints")
	if got := dp.ColumnSensitivity("undeclared_column"); got != SensitivityHigh {
		t.Errorf("ColumnSensitivity(unknown) = %s, want HIGH", got)
	}
}

func TestSearchMetrics(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name    string
		request string
		wantTop string
	}{
		{
			name:    "complaint keyword",
			request: "How many complaints did we get by state?",
			wantTop: "complaint_count",
		},
		{
			name:    "npa keyword",
			request: "show the npa ratio by quarter",
			wantTop: "npa_ratio",
		},
		{
			name:    "direct metric id",
			request: "complaint_count for 2024",
			wantTop: "complaint_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := c.BestMetric(tt.request)
			if m == nil {
				t.Fatalf("BestMetric(%q) = nil", tt.request)
			}
			if m.MetricID != tt.wantTop {
				t.Errorf("BestMetric(%q) = %s, want %s", tt.request, m.MetricID, tt.wantTop)
			}
		})
	}
}

func TestSearchMetrics_NoMatch(t *testing.T) {
	c := testCatalog()
	if m := c.BestMetric("weather forecast tomorrow"); m != nil {
		t.Errorf("BestMetric(unrelated) = %s, want nil", m.MetricID)
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Plot quarterly complaint trend for the bank")
	for _, want := range []string{"complaint", "bank", "trend", "quarterly"} {
		if !strings.Contains(got, want) {
			t.Errorf("ExtractKeywords() = %q, missing %q", got, want)
		}
	}

	// Unrecognized text falls through unchanged.
	if got := ExtractKeywords("hello world"); got != "hello world" {
		t.Errorf("ExtractKeywords(no terms) = %q, want passthrough", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	metricsYAML := `metrics:
  - metric_id: complaint_count
    name: Complaint Count
    version: 1.0.0
    description: Number of complaints
    data_product: dp_complaints
    allowed_dimensions: [state, product]
    allowed_filters: [state, region]
`
	productsYAML := `data_products:
  - id: dp_complaints
    name: Consumer Complaints
    version: 1.0.0
    region_column: region
    date_column: date_received
    grain_columns:
      month: date_month
    columns:
      - {name: state, sensitivity: LOW}
      - {name: product, sensitivity: LOW}
      - {name: consumer_narrative, sensitivity: HIGH}
`

	writeFile(t, filepath.Join(dir, "metrics.yaml"), metricsYAML)
	writeFile(t, filepath.Join(dir, "data_products.yaml"), productsYAML)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	m := c.Metric("complaint_count")
	if m == nil {
		t.Fatal("metric complaint_count not loaded")
	}
	if m.DataProduct != "dp_complaints" {
		t.Errorf("DataProduct = %q, want dp_complaints", m.DataProduct)
	}

	dp := c.DataProduct("dp_complaints")
	if dp == nil {
		t.Fatal("data product dp_complaints not loaded")
	}
	if got := dp.ColumnSensitivity("consumer_narrative"); got != SensitivityHigh {
		t.Errorf("consumer_narrative sensitivity = %s, want HIGH", got)
	}
	if col, ok := dp.GrainColumn("month"); !ok || col != "date_month" {
		t.Errorf("GrainColumn(month) = %q,%v, want date_month,true", col, ok)
	}
}

func TestLoad_UnknownDataProduct(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "metrics.yaml"), `metrics:
  - metric_id: orphan_metric
    name: Orphan
    version: 1.0.0
    data_product: dp_missing
`)
	writeFile(t, filepath.Join(dir, "data_products.yaml"), `data_products:
  - id: dp_complaints
    name: Consumer Complaints
    version: 1.0.0
    columns:
      - {name: state, sensitivity: LOW}
`)

	if _, err := Load(dir); err == nil {
		t.Error("Load() with dangling data_product reference = nil, want error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
