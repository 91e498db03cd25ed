package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Result is a fully materialized query result.
type Result struct {
	Columns  []string
	Rows     []map[string]any
	RowCount int
}

// Column returns the values of one column across all rows, in row order.
func (r *Result) Column(name string) []any {
	vals := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		vals = append(vals, row[name])
	}
	return vals
}

// Executor runs validated SQL against the warehouse database. Each pipeline
// instance should hold its own Executor handle; the underlying pool is safe
// for concurrent use.
type Executor struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the warehouse database at path.
func Open(path string) (*Executor, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse at %s: %w", path, err)
	}
	return NewExecutor(db), nil
}

// NewExecutor wraps an existing database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{
		db:     db,
		logger: slog.Default().With("component", "warehouse"),
	}
}

// DB exposes the underlying handle for collaborators that read warehouse
// metadata tables, such as the quality gate.
func (e *Executor) DB() *sql.DB {
	return e.db
}

// Close closes the underlying database handle.
func (e *Executor) Close() error {
	return e.db.Close()
}

// Query executes one SELECT and materializes every row. The SQL is assumed
// to have passed safety validation; the executor adds no defense of its own.
func (e *Executor) Query(ctx context.Context, sqlText string) (*Result, error) {
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result iteration failed: %w", err)
	}

	result.RowCount = len(result.Rows)
	e.logger.Debug("query executed", "rows", result.RowCount)
	return result, nil
}
