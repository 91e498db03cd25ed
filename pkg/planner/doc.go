// Package planner turns a natural-language analytics request into a
// structured query plan: a metric binding, an aggregation verb, dimension
// and filter selections, and the set of columns (with sensitivity tiers)
// the request needs.
//
// The planner is a heuristic keyword matcher, not a language model. It is
// deliberately conservative: it only ever selects dimensions and filters the
// catalog allows for the chosen metric, and it resolves column sensitivity
// from the data product's declared schema so that downstream policy
// evaluation sees the true access cost of the plan.
package planner
