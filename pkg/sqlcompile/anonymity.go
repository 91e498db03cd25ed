package sqlcompile

import (
	"fmt"
	"regexp"
)

var (
	groupByRE = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	havingRE  = regexp.MustCompile(`(?i)(HAVING\s+)`)
	orderByRE = regexp.MustCompile(`(?i)(\s+ORDER\s+BY)`)
	limitRE   = regexp.MustCompile(`(?i)(\s+LIMIT)`)
)

// ApplyMinGroupSize enforces the anonymity floor on a grouped statement by
// adding a HAVING COUNT(*) >= minSize clause. An existing HAVING clause is
// extended conjunctively, never replaced. Ungrouped statements pass through
// unchanged: a single-row aggregate discloses no group.
func ApplyMinGroupSize(sql string, minSize int) string {
	if minSize <= 0 || !groupByRE.MatchString(sql) {
		return sql
	}

	predicate := fmt.Sprintf("COUNT(*) >= %d", minSize)

	if havingRE.MatchString(sql) {
		return havingRE.ReplaceAllString(sql, fmt.Sprintf("${1}%s AND ", predicate))
	}
	if orderByRE.MatchString(sql) {
		return orderByRE.ReplaceAllString(sql, fmt.Sprintf(" HAVING %s${1}", predicate))
	}
	if limitRE.MatchString(sql) {
		return limitRE.ReplaceAllString(sql, fmt.Sprintf(" HAVING %s${1}", predicate))
	}
	return fmt.Sprintf("%s HAVING %s", sql, predicate)
}
