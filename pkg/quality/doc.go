// Package quality gates query execution on data-product promotion. A data
// product is queryable exactly when its promotion registry entry marks it
// promoted; an optional, explicitly configured fallback treats products as
// queryable when the registry has not been initialized yet but the table
// itself exists with rows.
package quality
