package planner

import (
	"trustmark-hq/polaris/pkg/catalog"
	"trustmark-hq/polaris/pkg/policy"
)

// Filters is the typed filter set of a plan. Zero values mean "not set".
type Filters struct {
	// DateRange is a symbolic range ("last_12_months", "last_quarter").
	DateRange string `json:"date_range,omitempty"`

	// Year is an explicit calendar year, 0 when unset.
	Year int `json:"year,omitempty"`

	// State is a two-letter US state code.
	State string `json:"state,omitempty"`

	// Region is a region value matched against the product's region column.
	Region string `json:"region,omitempty"`
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// QueryPlan is the structured form of one analytics request. It is built
// once per request and mutated only by constraint application before
// compilation.
type QueryPlan struct {
	MetricID      string              `json:"metric_id"`
	MetricVersion string              `json:"metric_version"`
	DataProduct   string              `json:"data_product"`
	Aggregation   string              `json:"aggregation"`
	Dimensions    []string            `json:"dimensions"`
	Filters       Filters             `json:"filters"`
	Columns       []catalog.ColumnRef `json:"columns_needed"`

	WantsNarrative bool `json:"wants_narrative,omitempty"`
	WantsExport    bool `json:"wants_export,omitempty"`
	WantsTrend     bool `json:"wants_trend,omitempty"`
	WantsOutliers  bool `json:"wants_outliers,omitempty"`

	// RedactNarrative and MaskSensitive are set by constraint application,
	// never by the builder.
	RedactNarrative bool `json:"redact_narrative,omitempty"`
	MaskSensitive   bool `json:"mask_sensitive,omitempty"`

	// ForceTimeGrain is "month" or "quarter" when a purpose constraint
	// forces temporal aggregation, empty otherwise.
	ForceTimeGrain string `json:"force_time_grain,omitempty"`
}

// ApplyConstraints returns a copy of the plan with a policy constraint set
// folded in. The receiver is not modified; constraint application is the
// only sanctioned plan mutation and it happens on the copy.
func (p *QueryPlan) ApplyConstraints(c *policy.Constraints) *QueryPlan {
	out := *p
	out.Dimensions = append([]string(nil), p.Dimensions...)
	out.Columns = append([]catalog.ColumnRef(nil), p.Columns...)
	if c == nil {
		return &out
	}

	if c.MustRedactNarratives {
		out.RedactNarrative = true
	}
	if c.MustMask {
		out.MaskSensitive = true
	}
	if c.ForbidExport {
		out.WantsExport = false
	}
	if c.RegionFilter != "" {
		out.Filters.Region = c.RegionFilter
	}
	if c.AggregateToMonth {
		out.ForceTimeGrain = "month"
	}
	if c.AggregateToQuarter {
		out.ForceTimeGrain = "quarter"
	}
	return &out
}

// HasDimensions reports whether the plan groups by at least one dimension.
func (p *QueryPlan) HasDimensions() bool {
	return len(p.Dimensions) > 0
}
