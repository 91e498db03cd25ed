package evidence

import (
	"context"
	"io"
	"time"

	"trustmark-hq/polaris/pkg/policy"
	"trustmark-hq/polaris/pkg/quality"
)

// EvidenceRecord is the write-once audit document for one executed request.
// It is created exactly once per request that reaches execution and is never
// updated after creation.
type EvidenceRecord struct {
	// RequestID is a fresh random identifier assigned at pipeline entry.
	RequestID string `json:"request_id"`

	// Timestamp is when the record was assembled, UTC.
	Timestamp time.Time `json:"timestamp"`

	// RequestText is the original natural-language request.
	RequestText string `json:"request_text"`

	// User is the requesting user's attribute set.
	User policy.UserAttributes `json:"user_attributes"`

	// Decision captures the policy outcome and the constraints actually
	// applied to the executed plan.
	Decision DecisionRecord `json:"policy_decision"`

	// Metrics identifies the metric definitions the query used.
	Metrics MetricsRecord `json:"metrics"`

	// DataProducts identifies the data products the query read.
	DataProducts ProductsRecord `json:"data_products"`

	// Quality is the per-product quality snapshot at execution time.
	Quality map[string]quality.Status `json:"data_quality"`

	// SQL carries the executed statement in raw and canonical form together
	// with the content hash. The hash must be reproducible from the
	// canonical SQL alone.
	SQL SQLRecord `json:"sql"`

	// Results summarizes the execution outcome.
	Results ResultsRecord `json:"results"`

	// LineageEventID references the provenance event, or the lineage
	// sentinel when emission failed.
	LineageEventID string `json:"lineage_event_id"`

	// ExportPath is the exported artifact path, empty when no export
	// happened.
	ExportPath string `json:"export_path,omitempty"`
}

// DecisionRecord is the persisted view of a policy decision.
type DecisionRecord struct {
	Result             string              `json:"result"`
	Reason             string              `json:"reason"`
	ConstraintsApplied *policy.Constraints `json:"constraints_applied,omitempty"`
}

// MetricsRecord names the metrics and their versions.
type MetricsRecord struct {
	MetricIDs      []string          `json:"metric_ids"`
	MetricVersions map[string]string `json:"metric_versions"`
}

// ProductsRecord names the data products and their versions.
type ProductsRecord struct {
	ProductsUsed    []string          `json:"products_used"`
	ProductVersions map[string]string `json:"product_versions"`
}

// SQLRecord carries the executed SQL in its three forms.
type SQLRecord struct {
	FinalSQL     string `json:"final_sql"`
	CanonicalSQL string `json:"canonical_sql"`
	SQLHash      string `json:"sql_hash"`
}

// ResultsRecord summarizes execution output.
type ResultsRecord struct {
	RowCount         int `json:"row_count"`
	SuppressionCount int `json:"suppression_count"`
}

// Query defines filter parameters for reading back evidence records.
type Query struct {
	// Time range, inclusive on both ends.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters.
	RequestID    string `json:"request_id,omitempty"`
	UserRole     string `json:"user_role,omitempty"`
	PolicyResult string `json:"policy_result,omitempty"`
	DataProduct  string `json:"data_product,omitempty"`
	SQLHash      string `json:"sql_hash,omitempty"`

	// Pagination.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting. SortBy must be one of "timestamp", "user_role",
	// "policy_result", "row_count"; SortOrder "asc" or "desc".
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage is the durable, append-only evidence store. Implementations must
// be safe for concurrent use. Stored records are immutable: Store rejects a
// duplicate request id rather than overwriting.
type Storage interface {
	// Store persists one evidence record.
	Store(ctx context.Context, record *EvidenceRecord) error

	// Get retrieves one record by request id, or nil when absent.
	Get(ctx context.Context, requestID string) (*EvidenceRecord, error)

	// Query retrieves records matching the filter set.
	Query(ctx context.Context, query *Query) ([]*EvidenceRecord, error)

	// Count returns the number of records matching the filter set.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes matching records and returns how many were removed.
	// Used only by retention enforcement; evidence is otherwise append-only.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter writes evidence records to an output format.
type Exporter interface {
	Export(ctx context.Context, records []*EvidenceRecord, w io.Writer) error
}
