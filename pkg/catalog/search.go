package catalog

import (
	"sort"
	"strings"
)

// metricKeywords maps request keywords to the metric ids they suggest.
// Scoring is additive on top of name/description matches.
var metricKeywords = map[string][]string{
	"complaint":      {"complaint_count"},
	"complaints":     {"complaint_count"},
	"income":         {"net_income_sum", "net_income_avg"},
	"net income":     {"net_income_sum", "net_income_avg"},
	"deposit":        {"deposits_sum"},
	"deposits":       {"deposits_sum"},
	"tier1":          {"tier1_ratio_avg"},
	"tier 1":         {"tier1_ratio_avg"},
	"capital":        {"tier1_ratio_avg"},
	"npa":            {"npa_ratio"},
	"non-performing": {"npa_ratio"},
	"nonperforming":  {"npa_ratio"},
}

// ScoredMetric pairs a metric with its relevance score for a request.
type ScoredMetric struct {
	Metric *Metric
	Score  float64
}

// SearchMetrics ranks catalog metrics by relevance to a natural-language
// request. Metrics with zero score are omitted; the result is sorted by
// descending score, ties broken by metric id for determinism.
func (c *Catalog) SearchMetrics(request string) []ScoredMetric {
	query := strings.ToLower(request)

	var results []ScoredMetric
	for _, m := range c.metrics {
		if score := scoreMetric(m, query); score > 0 {
			results = append(results, ScoredMetric{Metric: m, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Metric.MetricID < results[j].Metric.MetricID
	})
	return results
}

// BestMetric returns the highest-scoring metric for a request, or nil if
// nothing in the catalog matches.
func (c *Catalog) BestMetric(request string) *Metric {
	results := c.SearchMetrics(request)
	if len(results) == 0 {
		return nil
	}
	return results[0].Metric
}

func scoreMetric(m *Metric, query string) float64 {
	score := 0.0
	name := strings.ToLower(m.Name)
	desc := strings.ToLower(m.Description)
	id := strings.ToLower(m.MetricID)

	if strings.Contains(query, id) {
		score += 10
	}

	for _, word := range strings.Fields(query) {
		if len(word) <= 2 {
			continue
		}
		if strings.Contains(name, word) {
			score += 5
		}
		if strings.Contains(desc, word) {
			score += 2
		}
		if strings.Contains(id, word) {
			score += 3
		}
	}

	for keyword, ids := range metricKeywords {
		if !strings.Contains(query, keyword) {
			continue
		}
		for _, kid := range ids {
			if id == kid {
				score += 8
			}
		}
	}

	return score
}

// ExtractKeywords pulls recognized analytics terms from a request for a
// broader second-pass search when the literal text matched nothing.
func ExtractKeywords(request string) string {
	terms := []string{
		"complaint", "income", "deposit", "tier", "capital", "npa",
		"bank", "financial", "trend", "quarterly", "monthly",
	}
	lower := strings.ToLower(request)

	var found []string
	for _, t := range terms {
		if strings.Contains(lower, t) {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return request
	}
	return strings.Join(found, " ")
}
