package sqlcompile

import (
	"fmt"
	"regexp"
	"strings"

	"trustmark-hq/polaris/pkg/catalog"
	"trustmark-hq/polaris/pkg/planner"
	"trustmark-hq/polaris/pkg/policy"
)

// NoMetricError reports a plan that reached the compiler without a metric
// binding. Compilation never partially applies: the statement is either
// built completely or not at all.
type NoMetricError struct{}

func (e *NoMetricError) Error() string {
	return "plan has no metric to compile"
}

var (
	stateSanitizeRE  = regexp.MustCompile(`[^A-Z]`)
	regionSanitizeRE = regexp.MustCompile(`[^a-z_]`)
)

// NarrativeColumn is the result column carrying complaint narrative text.
const NarrativeColumn = "consumer_narrative"

// RedactedLiteral is the placeholder selected in place of narrative text
// when a constraint requires redaction. Raw narrative values never appear
// in a compiled statement.
const RedactedLiteral = "[REDACTED]"

// Compile renders a plan plus its active constraint set into one SELECT
// statement over the plan's data product.
//
// Steps apply in a fixed order: grain injection, select list, predicates,
// grouping and ordering, anonymity, row cap. The dimension list is taken
// from the catalog-validated plan; filter literals are sanitized to their
// expected alphabets before interpolation.
func Compile(metric *catalog.Metric, dp *catalog.DataProduct, plan *planner.QueryPlan, constraints *policy.Constraints) (string, error) {
	if metric == nil || plan == nil || plan.MetricID == "" {
		return "", &NoMetricError{}
	}

	dims := append([]string(nil), plan.Dimensions...)
	dims = injectGrain(dims, dp, plan.ForceTimeGrain)

	// Raw narrative text is never part of the compiled statement. A plan
	// flagged for redaction gets a masked literal in its place; the
	// orchestrator additionally masks any narrative text found in result
	// rows after execution.
	var selectParts []string
	selectParts = append(selectParts, dims...)
	selectParts = append(selectParts, metricExpression(plan.MetricID, plan.Aggregation))
	if plan.RedactNarrative {
		selectParts = append(selectParts, fmt.Sprintf("'%s' AS %s", RedactedLiteral, NarrativeColumn))
	}

	whereParts := buildPredicates(dp, plan.Filters)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s",
		strings.Join(selectParts, ", "),
		plan.DataProduct,
		strings.Join(whereParts, " AND "))

	if len(dims) > 0 {
		fmt.Fprintf(&b, " GROUP BY %s ORDER BY %s", strings.Join(dims, ", "), dims[0])
	}

	sql := b.String()
	if constraints != nil {
		sql = ApplyMinGroupSize(sql, constraints.MinGroupSize)
		if constraints.MaxRows > 0 {
			sql = fmt.Sprintf("%s LIMIT %d", strings.TrimSuffix(sql, ";"), constraints.MaxRows)
		}
	}
	return sql, nil
}

// injectGrain adds the data product's grain column for a forced time grain,
// if the product supports that grain and the column is not already grouped.
func injectGrain(dims []string, dp *catalog.DataProduct, grain string) []string {
	if grain == "" || dp == nil {
		return dims
	}
	col, ok := dp.GrainColumn(grain)
	if !ok {
		return dims
	}
	for _, d := range dims {
		if d == col {
			return dims
		}
	}
	return append(dims, col)
}

// buildPredicates assembles the WHERE conjuncts. The leading tautology keeps
// the clause well-formed with zero filters.
func buildPredicates(dp *catalog.DataProduct, f planner.Filters) []string {
	parts := []string{"1=1"}

	dateCol := ""
	if dp != nil {
		dateCol = dp.DateColumn
	}

	switch f.DateRange {
	case "last_12_months":
		if dateCol != "" {
			parts = append(parts, fmt.Sprintf("%s >= CURRENT_DATE - INTERVAL '12 months'", dateCol))
		}
	case "last_quarter":
		if dateCol != "" {
			parts = append(parts, fmt.Sprintf("%s >= CURRENT_DATE - INTERVAL '3 months'", dateCol))
		}
	}

	if f.Year > 0 {
		if dateCol != "" {
			parts = append(parts, fmt.Sprintf("EXTRACT(YEAR FROM %s) = %d", dateCol, f.Year))
		} else {
			// Period-keyed products carry the year as a quarter prefix.
			parts = append(parts, fmt.Sprintf("quarter LIKE '%d%%'", f.Year))
		}
	}

	if f.State != "" {
		state := SanitizeState(f.State)
		parts = append(parts, fmt.Sprintf("state = '%s'", state))
	}

	if f.Region != "" && dp != nil && dp.RegionColumn != "" {
		region := SanitizeRegion(f.Region)
		parts = append(parts, fmt.Sprintf("%s = '%s'", dp.RegionColumn, region))
	}

	return parts
}

// SanitizeState strips a state literal to uppercase letters, max two.
func SanitizeState(s string) string {
	cleaned := stateSanitizeRE.ReplaceAllString(strings.ToUpper(s), "")
	if len(cleaned) > 2 {
		cleaned = cleaned[:2]
	}
	return cleaned
}

// SanitizeRegion strips a region literal to lowercase letters and underscores.
func SanitizeRegion(s string) string {
	return regionSanitizeRE.ReplaceAllString(strings.ToLower(s), "")
}
