// Package telemetry groups the observability subsystems of the query
// pipeline: structured logging with PII redaction, Prometheus metrics,
// health checks, and distributed tracing.
//
// Each subsystem lives in its own subpackage and can be used
// independently:
//
//   - logging: slog-based structured logging with redaction of consumer
//     PII (SSNs, account numbers, narratives) before anything hits disk
//   - metrics: Prometheus collectors for query, policy, quality gate and
//     evidence activity
//   - health: liveness and readiness checks over the warehouse, catalog
//     and evidence store
//   - tracing: OpenTelemetry spans per pipeline stage
package telemetry
