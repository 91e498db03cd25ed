package logging

import (
	"context"
)

type contextKey string

const (
	// RequestIDKey is the context key for pipeline request IDs.
	RequestIDKey contextKey = "request_id"

	// UserRoleKey is the context key for the requesting user's role.
	UserRoleKey contextKey = "user_role"

	// PurposeKey is the context key for the declared query purpose.
	PurposeKey contextKey = "purpose"

	// MetricIDKey is the context key for the resolved metric ID.
	MetricIDKey contextKey = "metric_id"

	// DataProductKey is the context key for the resolved data product.
	DataProductKey contextKey = "data_product"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithUserRole adds the requesting user's role to the context.
func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, UserRoleKey, role)
}

// GetUserRole retrieves the user role from the context.
func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

// WithPurpose adds the declared query purpose to the context.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, PurposeKey, purpose)
}

// GetPurpose retrieves the query purpose from the context.
func GetPurpose(ctx context.Context) string {
	if purpose, ok := ctx.Value(PurposeKey).(string); ok {
		return purpose
	}
	return ""
}

// WithMetricID adds the resolved metric ID to the context.
func WithMetricID(ctx context.Context, metricID string) context.Context {
	return context.WithValue(ctx, MetricIDKey, metricID)
}

// GetMetricID retrieves the metric ID from the context.
func GetMetricID(ctx context.Context) string {
	if metricID, ok := ctx.Value(MetricIDKey).(string); ok {
		return metricID
	}
	return ""
}

// WithDataProduct adds the resolved data product to the context.
func WithDataProduct(ctx context.Context, dataProduct string) context.Context {
	return context.WithValue(ctx, DataProductKey, dataProduct)
}

// GetDataProduct retrieves the data product from the context.
func GetDataProduct(ctx context.Context) string {
	if dp, ok := ctx.Value(DataProductKey).(string); ok {
		return dp
	}
	return ""
}

// extractContextFields extracts pipeline fields from context for logging.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if role := GetUserRole(ctx); role != "" {
		fields = append(fields, "user_role", role)
	}
	if purpose := GetPurpose(ctx); purpose != "" {
		fields = append(fields, "purpose", purpose)
	}
	if metricID := GetMetricID(ctx); metricID != "" {
		fields = append(fields, "metric_id", metricID)
	}
	if dp := GetDataProduct(ctx); dp != "" {
		fields = append(fields, "data_product", dp)
	}
	return fields
}
