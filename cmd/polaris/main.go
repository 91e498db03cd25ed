// Polaris is a governed analytics pipeline for banking data: it turns
// natural-language questions into policy-checked, quality-gated SQL and
// records an immutable evidence trail for every executed query.
//
// Usage:
//
//	# Ask a question against the configured warehouse
//	polaris ask "How many complaints by state?" --role branch_manager --region northeast
//
//	# Evaluate policy without executing anything
//	polaris policy check "Show complaint narratives" --role data_analyst
//
//	# List recorded evidence
//	polaris evidence list --role auditor --limit 20
//
//	# Export evidence for an audit
//	polaris evidence export --format csv --output evidence.csv
//
//	# Validate the metric catalog
//	polaris catalog validate
package main

func main() {
	Execute()
}
