package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys used across the pipeline.
var (
	AttrRequestID   = attribute.Key("polaris.request_id")
	AttrUserRole    = attribute.Key("polaris.user_role")
	AttrPurpose     = attribute.Key("polaris.purpose")
	AttrStage       = attribute.Key("polaris.stage")
	AttrMetricID    = attribute.Key("polaris.metric_id")
	AttrDataProduct = attribute.Key("polaris.data_product")
	AttrPolicyRes   = attribute.Key("polaris.policy_result")
	AttrSQLHash     = attribute.Key("polaris.sql_hash")
	AttrRowCount    = attribute.Key("polaris.row_count")
)

// RecordError marks a span as failed and records the error.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordOutcome annotates a span with the terminal pipeline outcome.
func RecordOutcome(span trace.Span, result string, rows int) {
	span.SetAttributes(
		AttrPolicyRes.String(result),
		AttrRowCount.Int(rows),
	)
	span.SetStatus(codes.Ok, "")
}
