package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"trustmark-hq/polaris/pkg/evidence"
	"trustmark-hq/polaris/pkg/policy"
	"trustmark-hq/polaris/pkg/quality"
)

// sortColumns whitelists the columns Query.SortBy may reference; the sort
// column is interpolated into the statement, so anything outside this set
// is replaced by the default.
var sortColumns = map[string]bool{
	"timestamp":     true,
	"user_role":     true,
	"policy_result": true,
	"row_count":     true,
}

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/evidence.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend, initializing the
// schema and enabling WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite evidence storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists an evidence record. A duplicate request id fails with
// DuplicateRecordError; stored records are never overwritten.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.EvidenceRecord) error {
	constraints, _ := json.Marshal(record.Decision.ConstraintsApplied)
	metricIDs, _ := json.Marshal(record.Metrics.MetricIDs)
	metricVersions, _ := json.Marshal(record.Metrics.MetricVersions)
	products, _ := json.Marshal(record.DataProducts.ProductsUsed)
	productVersions, _ := json.Marshal(record.DataProducts.ProductVersions)
	qualitySnapshot, _ := json.Marshal(record.Quality)

	query := `
		INSERT INTO evidence (
			request_id, timestamp, request_text,
			user_role, user_region, user_purpose,
			policy_result, policy_reason, constraints_applied,
			metric_ids, metric_versions, data_products, product_versions,
			quality_snapshot,
			final_sql, canonical_sql, sql_hash,
			row_count, suppression_count,
			lineage_event_id, export_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.RequestID, record.Timestamp, record.RequestText,
		record.User.Role, record.User.Region, string(record.User.Purpose),
		record.Decision.Result, record.Decision.Reason, string(constraints),
		string(metricIDs), string(metricVersions), string(products), string(productVersions),
		string(qualitySnapshot),
		record.SQL.FinalSQL, record.SQL.CanonicalSQL, record.SQL.SQLHash,
		record.Results.RowCount, record.Results.SuppressionCount,
		record.LineageEventID, record.ExportPath,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return evidence.NewDuplicateRecordError(record.RequestID)
		}
		return evidence.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Get retrieves one record by request id, or nil when absent.
func (s *SQLiteStorage) Get(ctx context.Context, requestID string) (*evidence.EvidenceRecord, error) {
	records, err := s.Query(ctx, &evidence.Query{RequestID: requestID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Query retrieves evidence records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.EvidenceRecord, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT * FROM evidence"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sortBy := "timestamp"
	if sortColumns[query.SortBy] {
		sortBy = query.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*evidence.EvidenceRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of evidence records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM evidence"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes evidence records matching the query filters and returns
// the number removed. Only retention enforcement calls this.
func (s *SQLiteStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM evidence"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite evidence storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters. Returns the
// clause without the WHERE keyword, plus the bound arguments.
func buildWhereClause(query *evidence.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *query.EndTime)
	}
	if query.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, query.RequestID)
	}
	if query.UserRole != "" {
		conditions = append(conditions, "user_role = ?")
		args = append(args, query.UserRole)
	}
	if query.PolicyResult != "" {
		conditions = append(conditions, "policy_result = ?")
		args = append(args, query.PolicyResult)
	}
	if query.DataProduct != "" {
		conditions = append(conditions, "data_products LIKE ?")
		args = append(args, "%"+query.DataProduct+"%")
	}
	if query.SQLHash != "" {
		conditions = append(conditions, "sql_hash = ?")
		args = append(args, query.SQLHash)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into an EvidenceRecord.
func scanRow(row *sql.Rows) (*evidence.EvidenceRecord, error) {
	var (
		record          evidence.EvidenceRecord
		purpose         string
		constraints     sql.NullString
		metricIDs       sql.NullString
		metricVersions  sql.NullString
		products        sql.NullString
		productVersions sql.NullString
		qualitySnapshot sql.NullString
		lineageEventID  sql.NullString
		exportPath      sql.NullString
	)

	err := row.Scan(
		&record.RequestID, &record.Timestamp, &record.RequestText,
		&record.User.Role, &record.User.Region, &purpose,
		&record.Decision.Result, &record.Decision.Reason, &constraints,
		&metricIDs, &metricVersions, &products, &productVersions,
		&qualitySnapshot,
		&record.SQL.FinalSQL, &record.SQL.CanonicalSQL, &record.SQL.SQLHash,
		&record.Results.RowCount, &record.Results.SuppressionCount,
		&lineageEventID, &exportPath,
	)
	if err != nil {
		return nil, err
	}

	record.User.Purpose = policy.Purpose(purpose)
	record.LineageEventID = lineageEventID.String
	record.ExportPath = exportPath.String

	if constraints.Valid && constraints.String != "null" {
		var c policy.Constraints
		if err := json.Unmarshal([]byte(constraints.String), &c); err == nil {
			record.Decision.ConstraintsApplied = &c
		}
	}
	if metricIDs.Valid {
		json.Unmarshal([]byte(metricIDs.String), &record.Metrics.MetricIDs)
	}
	if metricVersions.Valid {
		json.Unmarshal([]byte(metricVersions.String), &record.Metrics.MetricVersions)
	}
	if products.Valid {
		json.Unmarshal([]byte(products.String), &record.DataProducts.ProductsUsed)
	}
	if productVersions.Valid {
		json.Unmarshal([]byte(productVersions.String), &record.DataProducts.ProductVersions)
	}
	if qualitySnapshot.Valid {
		var q map[string]quality.Status
		if err := json.Unmarshal([]byte(qualitySnapshot.String), &q); err == nil {
			record.Quality = q
		}
	}

	return &record, nil
}
