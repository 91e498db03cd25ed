// Package tracing provides OpenTelemetry spans for pipeline runs.
//
// A run produces one root span and one child span per stage (plan
// building, policy evaluation, SQL compilation, quality gate, warehouse
// execution, lineage, evidence). Spans are exported over OTLP gRPC when
// tracing is enabled; otherwise a noop tracer keeps the call sites free
// of conditionals.
package tracing
