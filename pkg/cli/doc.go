// Package cli holds the shared helpers of the polaris command: output
// formatters for query results and evidence listings, typed command errors,
// and signal-driven shutdown for long-running commands.
//
// Query results and evidence listings reduce to a Table, which the text and
// CSV formatters both render:
//
//	formatter := cli.NewFormatter(cli.FormatCSV)
//	err := formatter.FormatTo(os.Stdout, &cli.Table{
//		Headers: []string{"state", "complaint_count"},
//		Rows:    rows,
//	})
package cli
