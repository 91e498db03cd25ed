package pipeline

import (
	"fmt"
	"strings"

	"trustmark-hq/polaris/pkg/policy"
)

// buildExplanation produces the deterministic run summary shown to the
// caller: what was measured, how many rows came back, and which
// protections applied.
func buildExplanation(st executedStage) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Computed %s over %s: %d rows",
		st.plan.MetricID, st.plan.DataProduct, st.result.RowCount)

	if len(st.constrained.Dimensions) > 0 {
		fmt.Fprintf(&sb, ", grouped by %s", strings.Join(st.constrained.Dimensions, ", "))
	}
	sb.WriteString(".")

	if c := st.decision.Constraints; c != nil {
		var applied []string
		if c.MinGroupSize > 0 {
			applied = append(applied, fmt.Sprintf("groups below %d suppressed", c.MinGroupSize))
		}
		if c.MaxRows > 0 {
			applied = append(applied, fmt.Sprintf("capped at %d rows", c.MaxRows))
		}
		if c.MustRedactNarratives {
			applied = append(applied, "narratives redacted")
		}
		if c.MustMask {
			applied = append(applied, "sensitive values masked")
		}
		if c.ForbidExport {
			applied = append(applied, "export forbidden")
		}
		if c.RegionFilter != "" {
			applied = append(applied, fmt.Sprintf("restricted to region %s", c.RegionFilter))
		}
		if len(applied) > 0 {
			fmt.Fprintf(&sb, " Protections: %s.", strings.Join(applied, "; "))
		}
	}

	if st.decision.Result == policy.ResultAllowWithConstraints {
		sb.WriteString(" Access granted with constraints.")
	}

	blocked := 0
	for _, status := range st.snapshot {
		if !status.Queryable {
			blocked++
		}
	}
	if blocked == 0 && len(st.snapshot) > 0 {
		sb.WriteString(" All data products passed quality gates.")
	}

	return sb.String()
}
