package pipeline

import (
	"strings"

	"trustmark-hq/polaris/pkg/sqlcompile"
	"trustmark-hq/polaris/pkg/warehouse"
)

// RedactText masks every word of a narrative. Words longer than three
// characters keep their first character followed by one mask character
// per remaining character; shorter words become a fixed three-character
// mask.
func RedactText(text string) string {
	if text == "" {
		return text
	}

	words := strings.Fields(text)
	for i, w := range words {
		if len(w) > 3 {
			words[i] = w[:1] + strings.Repeat("*", len(w)-1)
		} else {
			words[i] = "***"
		}
	}
	return strings.Join(words, " ")
}

// redactResult masks narrative values in result rows in place and returns
// the number of rows whose narrative was suppressed. Rows already carrying
// the compiler's masked literal count as suppressed but are left as-is;
// any other narrative text that reaches a result is word-masked here.
func redactResult(result *warehouse.Result) int {
	if result == nil {
		return 0
	}

	touched := 0
	for _, row := range result.Rows {
		val, ok := row[sqlcompile.NarrativeColumn].(string)
		if !ok || val == "" {
			continue
		}
		if val != sqlcompile.RedactedLiteral {
			row[sqlcompile.NarrativeColumn] = RedactText(val)
		}
		touched++
	}
	return touched
}
