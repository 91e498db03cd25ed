package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trustmark-hq/polaris/pkg/catalog"
	"trustmark-hq/polaris/pkg/cli"
)

var catalogFlags struct {
	format string
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the metric and data product catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalog files",
	Long: `Load the configured catalog directory and run its consistency
checks: every metric must reference a declared data product, and every
allowed dimension must exist as a column of that product.`,
	RunE: runCatalogValidate,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog metrics",
	RunE:  runCatalogList,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd, catalogListCmd)

	catalogListCmd.Flags().StringVar(&catalogFlags.format, "format", "text", "output format: text, json")
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}

	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return cli.NewCommandError("catalog validate", err)
	}

	fmt.Printf("Catalog at %s is valid: %d metric(s), %d data product(s).\n",
		cfg.Catalog.Path, len(c.Metrics()), len(c.DataProducts()))
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}

	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return cli.NewCommandError("catalog list", err)
	}

	if catalogFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, c.Metrics())
	}

	table := &cli.Table{
		Headers: []string{"metric_id", "version", "data_product", "dimensions"},
	}
	for _, m := range c.Metrics() {
		table.Rows = append(table.Rows, []string{
			m.MetricID,
			m.Version,
			m.DataProduct,
			strings.Join(m.AllowedDimensions, ","),
		})
	}
	return cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table)
}
