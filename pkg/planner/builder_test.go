package planner

import (
	"errors"
	"testing"

	"trustmark-hq/polaris/pkg/catalog"
	"trustmark-hq/polaris/pkg/policy"
)

func testCatalog() *catalog.Catalog {
	metrics := []*catalog.Metric{
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
	products := []*catalog.DataProduct{
		{
			ID:      "dp_complaints",
			Name:    "Consumer Complaints",
			Version: "2.0.0",
			Columns: []catalog.ColumnRef{
				{Name: "state", Sensitivity: catalog.SensitivityLow},
				{Name: "product", Sensitivity: catalog.SensitivityLow},
				{Name: "date_month", Sensitivity: catalog.SensitivityLow},
				{Name: "complaint_quarter", Sensitivity: catalog.SensitivityLow},
				{Name: "consumer_narrative", Sensitivity: catalog.SensitivityHigh},
			},
			RegionColumn: "region",
			DateColumn:   "date_received",
			GrainColumns: map[string]string{"month": "date_month", "quarter": "complaint_quarter"},
		},
		{
			ID:      "dp_call_reports",
			Name:    "Bank Call Reports",
			Version: "1.1.0",
			Columns: []catalog.ColumnRef{
				{Name: "quarter", Sensitivity: catalog.SensitivityLow},
				{Name: "bank_region", Sensitivity: catalog.SensitivityLow},
				{Name: "net_income", Sensitivity: catalog.SensitivityMed},
				{Name: "total_assets", Sensitivity: catalog.SensitivityMed},
			},
			RegionColumn: "bank_region",
			GrainColumns: map[string]string{"quarter": "quarter"},
		},
	}
	return catalog.New(metrics, products)
}

func TestBuildComplaintsByState(t *testing.T) {
	b := NewBuilder(testCatalog())

	plan, err := b.Build("How many complaints by state in CA during 2024?")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if plan.MetricID != "complaint_count" {
		t.Fatalf("MetricID = %s, want complaint_count", plan.MetricID)
	}
	if plan.DataProduct != "dp_complaints" {
		t.Errorf("DataProduct = %s", plan.DataProduct)
	}
	if plan.Aggregation != "COUNT" {
		t.Errorf("Aggregation = %s, want COUNT", plan.Aggregation)
	}
	if !containsDim(plan.Dimensions, "state") {
		t.Errorf("Dimensions = %v, want state present", plan.Dimensions)
	}
	if plan.Filters.State != "CA" {
		t.Errorf("State filter = %q, want CA", plan.Filters.State)
	}
	if plan.Filters.Year != 2024 {
		t.Errorf("Year filter = %d, want 2024", plan.Filters.Year)
	}
}

func TestBuildResolvesColumnSensitivity(t *testing.T) {
	b := NewBuilder(testCatalog())

	plan, err := b.Build("show me the raw complaint narrative text by state")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !plan.WantsNarrative {
		t.Fatal("WantsNarrative = false, want true")
	}

	var narrative *catalog.ColumnRef
	for i := range plan.Columns {
		if plan.Columns[i].Name == "consumer_narrative" {
			narrative = &plan.Columns[i]
		}
	}
	if narrative == nil {
		t.Fatal("consumer_narrative missing from plan columns")
	}
	if narrative.Sensitivity != catalog.SensitivityHigh {
		t.Errorf("narrative sensitivity = %s, want HIGH", narrative.Sensitivity)
	}
}

func TestBuildDefaultDimension(t *testing.T) {
	b := NewBuilder(testCatalog())

	plan, err := b.Build("total complaint volume")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(plan.Dimensions) != 1 || plan.Dimensions[0] != "state" {
		t.Errorf("Dimensions = %v, want [state] default", plan.Dimensions)
	}
}

func TestBuildQuarterDimension(t *testing.T) {
	b := NewBuilder(testCatalog())

	plan, err := b.Build("quarterly npa ratio trend")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if plan.MetricID != "npa_ratio" {
		t.Fatalf("MetricID = %s, want npa_ratio", plan.MetricID)
	}
	if !containsDim(plan.Dimensions, "quarter") {
		t.Errorf("Dimensions = %v, want quarter present", plan.Dimensions)
	}
	if !plan.WantsTrend {
		t.Error("WantsTrend = false, want true")
	}
}

func TestBuildDateRangeFilters(t *testing.T) {
	b := NewBuilder(testCatalog())

	tests := []struct {
		request string
		want    string
	}{
		{"complaints over the last 12 months", "last_12_months"},
		{"complaints last year", "last_12_months"},
		{"complaints for the last quarter", "last_quarter"},
	}
	for _, tt := range tests {
		plan, err := b.Build(tt.request)
		if err != nil {
			t.Fatalf("Build(%q) error: %v", tt.request, err)
		}
		if plan.Filters.DateRange != tt.want {
			t.Errorf("Build(%q) DateRange = %q, want %q", tt.request, plan.Filters.DateRange, tt.want)
		}
	}
}

func TestBuildExportIntent(t *testing.T) {
	b := NewBuilder(testCatalog())

	plan, err := b.Build("export complaint counts by product to csv")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !plan.WantsExport {
		t.Error("WantsExport = false, want true")
	}
}

func TestBuildNoMatch(t *testing.T) {
	b := NewBuilder(testCatalog())

	_, err := b.Build("weather forecast for tomorrow")
	if err == nil {
		t.Fatal("Build(unrelated) = nil error, want NoMatchingMetricError")
	}
	var nme *NoMatchingMetricError
	if !errors.As(err, &nme) {
		t.Fatalf("error type = %T, want *NoMatchingMetricError", err)
	}
}

func TestApplyConstraintsDoesNotMutateOriginal(t *testing.T) {
	b := NewBuilder(testCatalog())

	plan, err := b.Build("export complaint narrative text by state")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !plan.WantsExport {
		t.Fatal("precondition: WantsExport should be true")
	}

	applied := plan.ApplyConstraints(&policy.Constraints{
		MinGroupSize:         10,
		MustRedactNarratives: true,
		MustMask:             true,
		ForbidExport:         true,
		RegionFilter:         "northeast",
		AggregateToMonth:     true,
	})

	if !applied.RedactNarrative || !applied.MaskSensitive {
		t.Errorf("constraints not folded in: %+v", applied)
	}
	if applied.WantsExport {
		t.Error("forbid_export must clear the export request")
	}
	if applied.Filters.Region != "northeast" {
		t.Errorf("Region = %q, want northeast", applied.Filters.Region)
	}
	if applied.ForceTimeGrain != "month" {
		t.Errorf("ForceTimeGrain = %q, want month", applied.ForceTimeGrain)
	}

	// Original plan untouched.
	if plan.RedactNarrative || !plan.WantsExport || plan.Filters.Region != "" {
		t.Errorf("ApplyConstraints mutated the original plan: %+v", plan)
	}
}

func containsDim(dims []string, want string) bool {
	for _, d := range dims {
		if d == want {
			return true
		}
	}
	return false
}
