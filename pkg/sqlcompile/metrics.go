package sqlcompile

import "fmt"

// metricExpressions is the fixed per-metric aggregation-expression table.
// Initialized once; never mutated at runtime. Ratio metrics use null-safe
// division so an empty denominator yields NULL instead of an error.
var metricExpressions = map[string]string{
	"complaint_count":            "COUNT(*) AS complaint_count",
	"timely_response_rate":       "AVG(CASE WHEN timely_response = 'Yes' THEN 1 ELSE 0 END) AS timely_response_rate",
	"dispute_rate":               "AVG(CASE WHEN consumer_disputed = 'Yes' THEN 1 ELSE 0 END) AS dispute_rate",
	"narrative_request_count":    "COUNT(consumer_narrative) AS narrative_request_count",
	"net_income_sum":             "SUM(net_income) AS net_income_sum",
	"net_income_avg":             "AVG(net_income) AS net_income_avg",
	"net_income_margin_avg":      "AVG(CAST(net_income AS DOUBLE)/NULLIF(CAST(total_assets AS DOUBLE),0)) AS net_income_margin_avg",
	"deposits_sum":               "SUM(total_deposits) AS deposits_sum",
	"deposits_avg":               "AVG(total_deposits) AS deposits_avg",
	"assets_sum":                 "SUM(total_assets) AS assets_sum",
	"deposit_to_asset_ratio_avg": "AVG(deposit_to_asset_ratio) AS deposit_to_asset_ratio_avg",
	"tier1_ratio_avg":            "AVG(tier1_capital_ratio) AS tier1_ratio_avg",
	"npa_ratio":                  "AVG(CAST(non_performing_assets AS DOUBLE)/NULLIF(CAST(total_assets AS DOUBLE),0)) AS npa_ratio",
}

// metricExpression returns the aggregation expression for a metric id.
// Unknown ids fall back to a generic aggregate over the detected verb.
func metricExpression(metricID, aggregation string) string {
	if expr, ok := metricExpressions[metricID]; ok {
		return expr
	}
	return fmt.Sprintf("%s(*) AS metric_value", aggregation)
}
