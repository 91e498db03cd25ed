package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trustmark-hq/polaris/pkg/cli"
	"trustmark-hq/polaris/pkg/evidence"
	"trustmark-hq/polaris/pkg/evidence/export"
	"trustmark-hq/polaris/pkg/evidence/retention"
)

var evidenceFlags struct {
	requestID   string
	role        string
	result      string
	dataProduct string
	sqlHash     string
	timeRange   string
	limit       int
	offset      int
	format      string
	output      string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Inspect and manage the evidence store",
	Long: `Read and manage the immutable evidence records written for every
executed query.

Examples:
  # Recent records for one role
  polaris evidence list --role auditor --limit 20

  # Everything a given statement ever produced
  polaris evidence list --sql-hash 3f1a9c...

  # Export an audit window
  polaris evidence export --time-range "2026-08-01T00:00:00Z/2026-08-25T00:00:00Z" --format csv --output audit.csv

  # Apply the retention policy once
  polaris evidence prune`,
}

var evidenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evidence records",
	RunE:  runEvidenceList,
}

var evidenceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export evidence records as JSON or CSV",
	RunE:  runEvidenceExport,
}

var evidencePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy to the evidence store",
	RunE:  runEvidencePrune,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceListCmd, evidenceExportCmd, evidencePruneCmd)

	for _, cmd := range []*cobra.Command{evidenceListCmd, evidenceExportCmd} {
		cmd.Flags().StringVar(&evidenceFlags.requestID, "request-id", "", "filter by request id")
		cmd.Flags().StringVar(&evidenceFlags.role, "role", "", "filter by requesting role")
		cmd.Flags().StringVar(&evidenceFlags.result, "result", "", "filter by policy result (ALLOW, ALLOW_WITH_CONSTRAINTS)")
		cmd.Flags().StringVar(&evidenceFlags.dataProduct, "data-product", "", "filter by data product")
		cmd.Flags().StringVar(&evidenceFlags.sqlHash, "sql-hash", "", "filter by SQL hash")
		cmd.Flags().StringVar(&evidenceFlags.timeRange, "time-range", "", "RFC3339 interval: start/end")
		cmd.Flags().IntVar(&evidenceFlags.limit, "limit", 100, "max records")
		cmd.Flags().IntVar(&evidenceFlags.offset, "offset", 0, "pagination offset")
	}
	evidenceListCmd.Flags().StringVar(&evidenceFlags.format, "format", "text", "output format: text, json")
	evidenceExportCmd.Flags().StringVar(&evidenceFlags.format, "format", "json", "export format: json, csv")
	evidenceExportCmd.Flags().StringVarP(&evidenceFlags.output, "output", "o", "", "output file (default: stdout)")
}

// buildEvidenceQuery translates the shared filter flags into a store query.
func buildEvidenceQuery() (*evidence.Query, error) {
	query := &evidence.Query{
		RequestID:    evidenceFlags.requestID,
		UserRole:     evidenceFlags.role,
		PolicyResult: evidenceFlags.result,
		DataProduct:  evidenceFlags.dataProduct,
		SQLHash:      evidenceFlags.sqlHash,
		Limit:        evidenceFlags.limit,
		Offset:       evidenceFlags.offset,
	}

	if evidenceFlags.timeRange != "" {
		parts := strings.Split(evidenceFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range %q (expected start/end)", evidenceFlags.timeRange)
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.StartTime = &start
		query.EndTime = &end
	}
	return query, nil
}

func queryEvidenceRecords(ctx context.Context) ([]*evidence.EvidenceRecord, error) {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return nil, err
	}

	store, err := openEvidenceStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	query, err := buildEvidenceQuery()
	if err != nil {
		return nil, err
	}
	return store.Query(ctx, query)
}

func runEvidenceList(cmd *cobra.Command, args []string) error {
	records, err := queryEvidenceRecords(cmd.Context())
	if err != nil {
		return cli.NewCommandError("evidence list", err)
	}

	if evidenceFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No evidence records found.")
		return nil
	}

	table := &cli.Table{
		Headers: []string{"request_id", "timestamp", "role", "result", "rows", "sql_hash"},
	}
	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			r.RequestID,
			r.Timestamp.Format(time.RFC3339),
			r.User.Role,
			r.Decision.Result,
			fmt.Sprint(r.Results.RowCount),
			shortHash(r.SQL.SQLHash),
		})
	}
	if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table); err != nil {
		return err
	}
	fmt.Printf("\n%d record(s)\n", len(records))
	return nil
}

func runEvidenceExport(cmd *cobra.Command, args []string) error {
	records, err := queryEvidenceRecords(cmd.Context())
	if err != nil {
		return cli.NewCommandError("evidence export", err)
	}

	var out io.Writer = os.Stdout
	if evidenceFlags.output != "" {
		f, err := os.Create(evidenceFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch evidenceFlags.format {
	case "csv":
		return export.NewCSVExporter(true).Export(cmd.Context(), records, out)
	case "json":
		return export.NewJSONExporter(true).Export(cmd.Context(), records, out)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, csv)", evidenceFlags.format)
	}
}

func runEvidencePrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}

	store, err := openEvidenceStore(cfg)
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays:       cfg.Evidence.Retention.Days,
		ArchiveBeforeDelete: cfg.Evidence.Retention.ArchiveBeforeDelete,
		ArchivePath:         cfg.Evidence.Retention.ArchivePath,
		MaxRecords:          cfg.Evidence.Retention.MaxRecords,
	})
	pruned, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}

	fmt.Printf("Pruned %d evidence record(s).\n", pruned)
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
