package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trustmark-hq/polaris/pkg/cli"
	"trustmark-hq/polaris/pkg/pipeline"
	"trustmark-hq/polaris/pkg/policy"
	"trustmark-hq/polaris/pkg/warehouse"
)

var askFlags struct {
	role    string
	region  string
	purpose string
	format  string
	showSQL bool
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Run a natural-language analytics question through the pipeline",
	Long: `Run one question through the full pipeline: plan building, policy
evaluation, constrained SQL compilation, the quality gate, execution and
evidence recording.

Examples:
  # Aggregate complaints, scoped to the caller's region
  polaris ask "How many complaints by state?" --role branch_manager --region northeast

  # Export the result as CSV (export-eligible roles only)
  polaris ask "Export complaint counts by state to csv" --role compliance_officer

  # Machine-readable outcome
  polaris ask "How many complaints by product?" --role risk_officer --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askFlags.role, "role", "", "requesting role (required)")
	askCmd.Flags().StringVar(&askFlags.region, "region", policy.RegionAll, "requesting region, or \"all\"")
	askCmd.Flags().StringVar(&askFlags.purpose, "purpose", "", "declared purpose (reporting, regulatory, investigation)")
	askCmd.Flags().StringVar(&askFlags.format, "format", "text", "output format: text, json")
	askCmd.Flags().BoolVar(&askFlags.showSQL, "show-sql", false, "print the compiled SQL")
	askCmd.MarkFlagRequired("role")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("ask", err)
	}
	defer a.Close(ctx)

	outcome, err := a.pipeline.Run(ctx, pipeline.Request{
		Text: args[0],
		User: policy.UserAttributes{
			Role:    askFlags.role,
			Region:  askFlags.region,
			Purpose: policy.Purpose(askFlags.purpose),
		},
	})
	if err != nil {
		if askFlags.format == "json" {
			// The partial outcome still explains where the run stopped.
			cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, outcome)
		}
		return cli.NewCommandError("ask", err)
	}

	if askFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, outcome)
	}

	fmt.Println(outcome.Explanation)
	fmt.Println()
	if askFlags.showSQL {
		fmt.Printf("SQL (%s):\n%s\n\n", outcome.SQLHash[:12], outcome.SQL)
	}

	if outcome.Result != nil && outcome.RowCount > 0 {
		if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, resultTable(outcome.Result)); err != nil {
			return err
		}
	} else {
		fmt.Println("No rows returned (small groups may have been suppressed).")
	}

	fmt.Println()
	fmt.Printf("Request ID: %s\n", outcome.RequestID)
	if outcome.ExportPath != "" {
		fmt.Printf("Export: %s\n", outcome.ExportPath)
	}
	return nil
}

// resultTable renders a warehouse result in catalog column order.
func resultTable(result *warehouse.Result) *cli.Table {
	table := &cli.Table{Headers: result.Columns}
	for _, row := range result.Rows {
		cells := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			cells[i] = formatCell(row[col])
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", val), "0"), ".")
	default:
		return fmt.Sprint(val)
	}
}
