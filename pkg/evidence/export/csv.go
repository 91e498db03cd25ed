package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"trustmark-hq/polaris/pkg/evidence"
)

// CSVExporter exports evidence records to CSV format. Nested structures are
// flattened: lists become semicolon-joined strings, constraint sets become
// embedded JSON.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes evidence records to w in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.EvidenceRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

func headerRow() []string {
	return []string{
		"request_id", "timestamp", "request_text",
		"user_role", "user_region", "user_purpose",
		"policy_result", "policy_reason", "constraints_applied",
		"metric_ids", "data_products",
		"final_sql", "canonical_sql", "sql_hash",
		"row_count", "suppression_count",
		"lineage_event_id", "export_path",
	}
}

func recordToRow(record *evidence.EvidenceRecord) []string {
	constraints, _ := json.Marshal(record.Decision.ConstraintsApplied)

	return []string{
		record.RequestID,
		record.Timestamp.Format(time.RFC3339),
		record.RequestText,
		record.User.Role,
		record.User.Region,
		string(record.User.Purpose),
		record.Decision.Result,
		record.Decision.Reason,
		string(constraints),
		strings.Join(record.Metrics.MetricIDs, ";"),
		strings.Join(record.DataProducts.ProductsUsed, ";"),
		record.SQL.FinalSQL,
		record.SQL.CanonicalSQL,
		record.SQL.SQLHash,
		strconv.Itoa(record.Results.RowCount),
		strconv.Itoa(record.Results.SuppressionCount),
		record.LineageEventID,
		record.ExportPath,
	}
}
