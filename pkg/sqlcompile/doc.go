// Package sqlcompile renders a query plan and its policy constraints into a
// single SELECT statement.
//
// Compilation is template-driven: every known metric id maps to a fixed
// aggregation expression, so the only user-influenced fragments of the
// statement are dimension names taken from the catalog and filter literals,
// which are sanitized to their expected alphabets before interpolation.
// Keyword and table defense is a separate static check in package sqlsafe,
// applied to compiler output.
package sqlcompile
