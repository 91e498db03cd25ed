// Package export writes evidence records to interchange formats for
// auditors and downstream tooling.
package export
