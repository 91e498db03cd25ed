package sqlsafe

import (
	"fmt"
	"regexp"
	"strings"
)

// ForbiddenKeywords is the case-insensitive deny-list of SQL keywords that
// must never appear in a compiled statement. Matches are whole-word.
var ForbiddenKeywords = []string{
	"CREATE", "DROP", "ALTER", "INSERT", "UPDATE", "DELETE",
	"TRUNCATE", "GRANT", "REVOKE", "PRAGMA", "ATTACH", "DETACH",
	"COPY", "EXPORT", "IMPORT", "LOAD", "INSTALL",
}

// fileReadFunctions are table functions that read files directly and bypass
// the data-product surface.
var fileReadFunctions = []string{"READ_CSV", "READ_PARQUET", "READ_JSON"}

// AllowedTables is the explicit table allow-list. Tables with the dp_ prefix
// are always permitted in addition to this list.
var AllowedTables = map[string]bool{
	"dp_complaints":   true,
	"dp_call_reports": true,
	"dp_macro_rates":  true,
}

// AllowedTablePrefix is the naming convention for queryable, promoted data
// products. Any table reference outside AllowedTables must carry this prefix.
const AllowedTablePrefix = "dp_"

var (
	keywordPatterns = compileKeywordPatterns()
	tablePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bFROM\s+(\w+)`),
		regexp.MustCompile(`(?i)\bJOIN\s+(\w+)`),
	}
	whitespaceRE = regexp.MustCompile(`\s+`)
)

func compileKeywordPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(ForbiddenKeywords))
	for _, kw := range ForbiddenKeywords {
		patterns[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return patterns
}

// ValidationError describes why a SQL statement was rejected.
type ValidationError struct {
	// Keyword is the forbidden keyword that matched, if any.
	Keyword string

	// Table is the disallowed table reference, if any.
	Table string

	// Reason is a human-readable rejection message.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Reason
}

// Validate performs the static safety check on a SQL statement. It returns
// nil if the statement is safe to execute, or a *ValidationError naming the
// offending keyword or table.
//
// A statement with no table references at all is permitted (literal-only
// queries such as SELECT 1).
func Validate(sql string) error {
	upper := strings.ToUpper(strings.TrimSpace(sql))

	for _, kw := range ForbiddenKeywords {
		if keywordPatterns[kw].MatchString(upper) {
			return &ValidationError{
				Keyword: kw,
				Reason:  fmt.Sprintf("forbidden SQL keyword: %s", kw),
			}
		}
	}

	for _, fn := range fileReadFunctions {
		if strings.Contains(upper, fn) {
			return &ValidationError{
				Keyword: fn,
				Reason:  "direct file reads are not allowed",
			}
		}
	}

	for _, table := range ExtractTables(sql) {
		lower := strings.ToLower(table)
		if !AllowedTables[lower] && !strings.HasPrefix(lower, AllowedTablePrefix) {
			return &ValidationError{
				Table:  table,
				Reason: fmt.Sprintf("table %q is not an allowed data product; only %s* tables are queryable", table, AllowedTablePrefix),
			}
		}
	}

	return nil
}

// ExtractTables returns the table names referenced by FROM and JOIN clauses.
// The scan is token-based rather than a full parse; the compiler only emits
// single-table statements, so this is sufficient for the allow-list check.
func ExtractTables(sql string) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, pattern := range tablePatterns {
		for _, match := range pattern.FindAllStringSubmatch(sql, -1) {
			name := match[1]
			if !seen[name] {
				seen[name] = true
				tables = append(tables, name)
			}
		}
	}
	return tables
}
