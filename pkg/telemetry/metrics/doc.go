// Package metrics provides Prometheus instrumentation for the query
// pipeline.
//
// The Collector owns a prometheus.Registry and four metric groups:
//
//   - query: pipeline requests by role/result, stage durations, rows
//     returned
//   - policy: decisions by result, denials by reason, constraint
//     applications
//   - quality: gate checks and blocked data products
//   - evidence: records written, write failures, retention deletions
//
// All recording methods are no-ops when the collector is disabled, and
// a cardinality limiter folds unseen label combinations into "other"
// once the configured limit is reached.
package metrics
