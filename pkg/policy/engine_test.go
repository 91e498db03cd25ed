package policy

import (
	"testing"

	"trustmark-hq/polaris/pkg/catalog"
)

func lowCols() []catalog.ColumnRef {
	return []catalog.ColumnRef{
		{Name: "product", Sensitivity: catalog.SensitivityLow},
		{Name: "state", Sensitivity: catalog.SensitivityLow},
	}
}

func medCols() []catalog.ColumnRef {
	return []catalog.ColumnRef{
		{Name: "product", Sensitivity: catalog.SensitivityLow},
		{Name: "dispute_flag", Sensitivity: catalog.SensitivityMed},
	}
}

func highCols() []catalog.ColumnRef {
	return []catalog.ColumnRef{
		{Name: "product", Sensitivity: catalog.SensitivityLow},
		{Name: "narrative", Sensitivity: catalog.SensitivityHigh},
	}
}

func TestEvaluateUnknownRoleDenies(t *testing.T) {
	d := Evaluate(UserAttributes{Role: "intern", Region: "northeast", Purpose: PurposeAnalysis}, lowCols(), nil)
	if !d.Denied() {
		t.Fatalf("expected DENY for unknown role, got %s", d.Result)
	}
	if d.Constraints != nil {
		t.Error("denied decision must carry no constraints")
	}
	if d.Reason != "unknown role: intern" {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestEvaluateBranchManagerAllRegionDenies(t *testing.T) {
	// The rule fires before any column inspection, so even an empty
	// column set is denied.
	for _, cols := range [][]catalog.ColumnRef{nil, lowCols(), highCols()} {
		d := Evaluate(UserAttributes{Role: "branch_manager", Region: RegionAll, Purpose: PurposeAnalysis}, cols, nil)
		if !d.Denied() {
			t.Fatalf("expected DENY for branch_manager with region all, got %s", d.Result)
		}
		if d.Constraints != nil {
			t.Error("denied decision must carry no constraints")
		}
	}
}

func TestEvaluateHighSensitivity(t *testing.T) {
	tests := []struct {
		role         string
		want         Result
		wantMaxRows  int
		wantNoExport bool
	}{
		{"branch_manager", ResultDeny, 0, false},
		{"risk_officer", ResultDeny, 0, false},
		{"data_analyst", ResultDeny, 0, false},
		{"compliance_officer", ResultAllowWithConstraints, 100, false},
		{"auditor", ResultAllowWithConstraints, 50, true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			d := Evaluate(UserAttributes{Role: tt.role, Region: "northeast", Purpose: PurposeAnalysis}, highCols(), nil)
			if d.Result != tt.want {
				t.Fatalf("result = %s, want %s", d.Result, tt.want)
			}
			if d.Denied() {
				if d.Constraints != nil {
					t.Error("denied decision must carry no constraints")
				}
				return
			}
			c := d.Constraints
			if c == nil {
				t.Fatal("allowed decision must carry constraints")
			}
			if !c.MustMask || !c.MustLogAccess || !c.MustRedactNarratives {
				t.Errorf("expected mask/log/redact constraints, got %+v", c)
			}
			if c.MaxRows != tt.wantMaxRows {
				t.Errorf("MaxRows = %d, want %d", c.MaxRows, tt.wantMaxRows)
			}
			if c.ForbidExport != tt.wantNoExport {
				t.Errorf("ForbidExport = %v, want %v", c.ForbidExport, tt.wantNoExport)
			}
			if c.MinGroupSize != DefaultMinGroupSize {
				t.Errorf("MinGroupSize = %d, want %d", c.MinGroupSize, DefaultMinGroupSize)
			}
		})
	}
}

func TestEvaluateMedSensitivityCeiling(t *testing.T) {
	tests := []struct {
		role string
		want Result
	}{
		{"branch_manager", ResultDeny},
		{"data_analyst", ResultDeny},
		{"risk_officer", ResultAllow},
		{"compliance_officer", ResultAllow},
		{"auditor", ResultAllow},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			d := Evaluate(UserAttributes{Role: tt.role, Region: "midwest", Purpose: PurposeAnalysis}, medCols(), nil)
			if d.Result != tt.want {
				t.Fatalf("result = %s, want %s", d.Result, tt.want)
			}
		})
	}
}

func TestEvaluateLowSensitivityAllowed(t *testing.T) {
	d := Evaluate(UserAttributes{Role: "data_analyst", Region: "west", Purpose: PurposeAnalysis}, lowCols(), nil)
	if d.Result != ResultAllow {
		t.Fatalf("result = %s, want ALLOW", d.Result)
	}
	if d.Constraints == nil || d.Constraints.MinGroupSize != DefaultMinGroupSize {
		t.Errorf("expected anonymity floor %d, got %+v", DefaultMinGroupSize, d.Constraints)
	}
	if d.Constraints.RegionFilter != "west" {
		t.Errorf("RegionFilter = %q, want %q", d.Constraints.RegionFilter, "west")
	}
}

func TestEvaluatePurposeMerge(t *testing.T) {
	t.Run("reporting", func(t *testing.T) {
		d := Evaluate(UserAttributes{Role: "risk_officer", Region: "west", Purpose: PurposeReporting}, lowCols(), nil)
		if !d.Constraints.AggregateToMonth {
			t.Error("reporting purpose must require monthly aggregation")
		}
	})

	t.Run("regulatory", func(t *testing.T) {
		d := Evaluate(UserAttributes{Role: "risk_officer", Region: "west", Purpose: PurposeRegulatory}, lowCols(), nil)
		if !d.Constraints.AggregateToQuarter {
			t.Error("regulatory purpose must require quarterly aggregation")
		}
	})

	t.Run("investigation caps rows and forbids export", func(t *testing.T) {
		d := Evaluate(UserAttributes{Role: "risk_officer", Region: "west", Purpose: PurposeInvestigation}, lowCols(), nil)
		c := d.Constraints
		if !c.MustLogAccess || !c.ForbidExport {
			t.Errorf("expected log+forbid_export, got %+v", c)
		}
		if c.MaxRows != investigationMaxRows {
			t.Errorf("MaxRows = %d, want %d", c.MaxRows, investigationMaxRows)
		}
	})

	t.Run("investigation does not raise an existing lower cap", func(t *testing.T) {
		d := Evaluate(UserAttributes{Role: "auditor", Region: "west", Purpose: PurposeInvestigation}, highCols(), nil)
		if d.Constraints.MaxRows != 50 {
			t.Errorf("MaxRows = %d, want 50", d.Constraints.MaxRows)
		}
	})
}

func TestEvaluateOverrides(t *testing.T) {
	mgs := 25
	rows := 40
	ov := &Overrides{
		MinGroupSize:      &mgs,
		ForceForbidExport: true,
		ForceMask:         true,
		ForceRedact:       true,
		MaxRows:           &rows,
		ForceRegion:       "southeast",
	}

	d := Evaluate(UserAttributes{Role: "risk_officer", Region: "west", Purpose: PurposeAnalysis}, lowCols(), ov)
	if d.Result != ResultAllow {
		t.Fatalf("result = %s, want ALLOW", d.Result)
	}
	c := d.Constraints
	if c.MinGroupSize != 25 || c.MaxRows != 40 {
		t.Errorf("override sizes not applied: %+v", c)
	}
	if !c.ForbidExport || !c.MustMask || !c.MustRedactNarratives {
		t.Errorf("override flags not applied: %+v", c)
	}
	if c.RegionFilter != "southeast" {
		t.Errorf("RegionFilter = %q, want southeast", c.RegionFilter)
	}
}

func TestEvaluateOverridesNeverRelaxDeny(t *testing.T) {
	mgs := 1
	ov := &Overrides{MinGroupSize: &mgs}
	d := Evaluate(UserAttributes{Role: "branch_manager", Region: RegionAll, Purpose: PurposeAnalysis}, lowCols(), ov)
	if !d.Denied() {
		t.Fatalf("override relaxed a denial: %s", d.Result)
	}
	if d.Constraints != nil {
		t.Error("denied decision must carry no constraints")
	}
}

func TestCanExport(t *testing.T) {
	if CanExport("branch_manager") {
		t.Error("branch_manager must not be export-eligible")
	}
	if !CanExport("auditor") {
		t.Error("auditor must be export-eligible")
	}
	if CanExport("nobody") {
		t.Error("unknown role must not be export-eligible")
	}
}
