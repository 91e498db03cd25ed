package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "polaris",
	Short: "Polaris - verifiable analytics pipeline for banking data",
	Long: `Polaris answers natural-language analytics questions over governed
banking data products.

Every question runs through a fixed pipeline:
  - Attribute-based policy evaluation before any SQL exists
  - SQL compiled from a structured plan under policy constraints
  - Static SQL safety validation against an allow-list
  - Data-quality gate on promoted data products
  - Immutable evidence record for every executed query`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "polaris.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
