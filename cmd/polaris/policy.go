package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trustmark-hq/polaris/pkg/cli"
	"trustmark-hq/polaris/pkg/pipeline"
	"trustmark-hq/polaris/pkg/policy"
)

var policyFlags struct {
	role    string
	region  string
	purpose string
	format  string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect policy decisions",
}

var policyCheckCmd = &cobra.Command{
	Use:   "check [question]",
	Short: "Evaluate policy for a question without executing it",
	Long: `Build the query plan for a question and evaluate policy against it.
Nothing is compiled or executed and no evidence is recorded.

Examples:
  polaris policy check "Show complaint narratives" --role data_analyst
  polaris policy check "How many complaints by state?" --role branch_manager --region northeast`,
	Args: cobra.ExactArgs(1),
	RunE: runPolicyCheck,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyCheckCmd)

	policyCheckCmd.Flags().StringVar(&policyFlags.role, "role", "", "requesting role (required)")
	policyCheckCmd.Flags().StringVar(&policyFlags.region, "region", policy.RegionAll, "requesting region, or \"all\"")
	policyCheckCmd.Flags().StringVar(&policyFlags.purpose, "purpose", "", "declared purpose")
	policyCheckCmd.Flags().StringVar(&policyFlags.format, "format", "text", "output format: text, json")
	policyCheckCmd.MarkFlagRequired("role")
}

func runPolicyCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("policy check", err)
	}
	defer a.Close(ctx)

	plan, decision, err := a.pipeline.EvaluateOnly(ctx, pipeline.Request{
		Text: args[0],
		User: policy.UserAttributes{
			Role:    policyFlags.role,
			Region:  policyFlags.region,
			Purpose: policy.Purpose(policyFlags.purpose),
		},
	})
	if err != nil {
		return cli.NewCommandError("policy check", err)
	}

	if policyFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, map[string]any{
			"plan":     plan,
			"decision": decision,
		})
	}

	fmt.Printf("Metric:       %s (v%s)\n", plan.MetricID, plan.MetricVersion)
	fmt.Printf("Data product: %s\n", plan.DataProduct)
	fmt.Printf("Decision:     %s\n", decision.Result)
	fmt.Printf("Reason:       %s\n", decision.Reason)
	if c := decision.Constraints; c != nil {
		fmt.Println("Constraints:")
		if c.MinGroupSize > 0 {
			fmt.Printf("  min group size: %d\n", c.MinGroupSize)
		}
		if c.MaxRows > 0 {
			fmt.Printf("  max rows: %d\n", c.MaxRows)
		}
		if c.MustMask {
			fmt.Println("  sensitive values masked")
		}
		if c.MustRedactNarratives {
			fmt.Println("  narratives redacted after execution")
		}
		if c.ForbidExport {
			fmt.Println("  export forbidden")
		}
		if c.RegionFilter != "" {
			fmt.Printf("  region restricted to %s\n", c.RegionFilter)
		}
	}
	return nil
}
