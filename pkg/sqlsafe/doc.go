// Package sqlsafe provides static safety validation, canonicalization, and
// content hashing for compiled SQL statements.
//
// Validation is an independent check layered on top of the query compiler:
// it rejects DDL/DML/administrative keywords, direct file-reading table
// functions, and references to tables outside the promoted data-product
// surface. Canonicalization collapses whitespace and upper-cases the
// statement so that hashing is invariant under formatting differences.
package sqlsafe
