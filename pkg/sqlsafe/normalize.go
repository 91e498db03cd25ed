package sqlsafe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize returns the canonical form of a SQL statement: leading and
// trailing whitespace stripped, consecutive whitespace collapsed to a single
// space, and the entire statement upper-cased.
//
// Two statements that differ only in formatting normalize identically; any
// textual difference beyond formatting survives normalization.
func Normalize(sql string) string {
	collapsed := whitespaceRE.ReplaceAllString(strings.TrimSpace(sql), " ")
	return strings.ToUpper(collapsed)
}

// Hash computes the hex-encoded SHA-256 digest of the normalized form of a
// SQL statement. The hash is the identity anchor for evidence records: it is
// reproducible from the canonical SQL alone and invariant under whitespace
// and case changes to the input.
func Hash(sql string) string {
	canonical := Normalize(sql)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
