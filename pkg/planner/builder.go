package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"trustmark-hq/polaris/pkg/catalog"
)

// NoMatchingMetricError reports that no catalog metric matched the request.
type NoMatchingMetricError struct {
	Request string
}

func (e *NoMatchingMetricError) Error() string {
	return fmt.Sprintf("no matching metrics found for request %q", e.Request)
}

// NewNoMatchingMetricError creates a NoMatchingMetricError for a request.
func NewNoMatchingMetricError(request string) *NoMatchingMetricError {
	return &NoMatchingMetricError{Request: request}
}

var (
	stateCodeRE = regexp.MustCompile(`\b([A-Z]{2})\b`)
	yearRE      = regexp.MustCompile(`\b(20\d{2})\b`)
)

// Builder builds query plans against an immutable catalog snapshot.
type Builder struct {
	catalog *catalog.Catalog
}

// NewBuilder creates a plan builder over a catalog snapshot.
func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

// Build resolves a natural-language request to a query plan. If the literal
// text matches no metric, a broader keyword-only pass is attempted before
// giving up with NoMatchingMetricError.
func (b *Builder) Build(request string) (*QueryPlan, error) {
	metric := b.catalog.BestMetric(request)
	if metric == nil {
		metric = b.catalog.BestMetric(catalog.ExtractKeywords(request))
	}
	if metric == nil {
		return nil, NewNoMatchingMetricError(request)
	}

	lower := strings.ToLower(request)
	plan := &QueryPlan{
		MetricID:       metric.MetricID,
		MetricVersion:  metric.Version,
		DataProduct:    metric.DataProduct,
		Aggregation:    detectAggregation(metric, lower),
		Dimensions:     detectDimensions(metric, lower),
		Filters:        detectFilters(metric, request, lower),
		WantsNarrative: wantsNarrative(lower),
		WantsExport:    strings.Contains(lower, "export") || strings.Contains(lower, "csv"),
		WantsTrend:     strings.Contains(lower, "trend") || strings.Contains(lower, "over time"),
		WantsOutliers:  strings.Contains(lower, "outlier") || strings.Contains(lower, "anomal"),
	}

	b.resolveColumns(plan)
	return plan, nil
}

// resolveColumns looks up the sensitivity of every column the plan touches
// from the data product's schema. A narrative request always contributes the
// narrative column so policy sees the full access cost.
func (b *Builder) resolveColumns(plan *QueryPlan) {
	dp := b.catalog.DataProduct(plan.DataProduct)
	if dp == nil {
		return
	}
	for _, dim := range plan.Dimensions {
		plan.Columns = append(plan.Columns, catalog.ColumnRef{
			Name:        dim,
			Sensitivity: dp.ColumnSensitivity(dim),
		})
	}
	if plan.WantsNarrative {
		plan.Columns = append(plan.Columns, catalog.ColumnRef{
			Name:        "consumer_narrative",
			Sensitivity: dp.ColumnSensitivity("consumer_narrative"),
		})
	}
}

// detectAggregation picks the aggregation verb from the request, falling
// back to a hint embedded in the metric id, then to COUNT.
func detectAggregation(metric *catalog.Metric, lower string) string {
	switch {
	case strings.Contains(lower, "average"), strings.Contains(lower, "avg"), strings.Contains(lower, "mean"):
		return "AVG"
	case strings.Contains(lower, "sum"), strings.Contains(lower, "total"):
		return "SUM"
	case strings.Contains(lower, "count"), strings.Contains(lower, "how many"):
		return "COUNT"
	case strings.Contains(lower, "max"):
		return "MAX"
	case strings.Contains(lower, "min"):
		return "MIN"
	}

	id := metric.MetricID
	switch {
	case strings.Contains(id, "count"):
		return "COUNT"
	case strings.Contains(id, "sum"):
		return "SUM"
	case strings.Contains(id, "avg"):
		return "AVG"
	}
	return "COUNT"
}

// detectDimensions selects grouping dimensions mentioned in the request,
// restricted to the metric's allowed set. Order follows the allowed-dimension
// order for determinism. With no mention at all, the first allowed dimension
// is used so grouped metrics stay grouped.
func detectDimensions(metric *catalog.Metric, lower string) []string {
	var dims []string
	seen := make(map[string]bool)

	add := func(dim string) {
		if !seen[dim] {
			seen[dim] = true
			dims = append(dims, dim)
		}
	}

	for _, dim := range metric.AllowedDimensions {
		spoken := strings.ReplaceAll(strings.ToLower(dim), "_", " ")
		if strings.Contains(lower, spoken) || strings.Contains(lower, strings.ToLower(dim)) {
			add(dim)
		}
	}

	if (strings.Contains(lower, "quarterly") || strings.Contains(lower, "quarter")) && metric.HasDimension("quarter") {
		add("quarter")
	}

	if len(dims) == 0 && len(metric.AllowedDimensions) > 0 {
		add(metric.AllowedDimensions[0])
	}
	return dims
}

// detectFilters extracts filter values from the request, restricted to the
// metric's allowed filter keys. State codes are matched against the original
// casing: two consecutive uppercase letters as a standalone word.
func detectFilters(metric *catalog.Metric, request, lower string) Filters {
	var f Filters

	switch {
	case strings.Contains(lower, "last 12 months"), strings.Contains(lower, "last year"):
		f.DateRange = "last_12_months"
	case strings.Contains(lower, "last quarter"):
		f.DateRange = "last_quarter"
	default:
		if m := yearRE.FindStringSubmatch(request); m != nil && metric.HasFilter("year") {
			if year, err := strconv.Atoi(m[1]); err == nil {
				f.Year = year
			}
		}
	}

	if metric.HasFilter("state") {
		if m := stateCodeRE.FindStringSubmatch(request); m != nil {
			f.State = m[1]
		}
	}
	return f
}

// wantsNarrative reports whether the request asks for free-text complaint
// content rather than aggregates.
func wantsNarrative(lower string) bool {
	for _, word := range []string{"narrative", "text", "description", "verbatim", "raw complaint"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
