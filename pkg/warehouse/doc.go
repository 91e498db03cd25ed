// Package warehouse provides the analytical query executor. The warehouse
// is treated as an opaque engine: it accepts validated SQL text and returns
// tabular rows plus a count. Results are fully materialized; the pipeline's
// row caps keep result sets small by construction.
package warehouse
