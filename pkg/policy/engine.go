package policy

import (
	"fmt"

	"trustmark-hq/polaris/pkg/catalog"
)

// Evaluate maps a user, the columns their plan needs, and any administrative
// overrides to a policy decision. It is deterministic and side-effect-free,
// and serves as the behavioral fallback when the remote policy service is
// unavailable.
//
// Rules are applied in order; the first matching rule wins:
//  1. unknown role denies;
//  2. branch_manager with the unrestricted region denies;
//  3. HIGH-sensitivity columns are constrained for compliance_officer and
//     auditor, denied for everyone else;
//  4. MED-sensitivity columns deny roles whose ceiling is below MED;
//  5. everything else is allowed with the anonymity floor.
//
// Purpose and override merges apply only to non-DENY outcomes; overrides can
// never relax a denial already reached.
func Evaluate(user UserAttributes, columns []catalog.ColumnRef, overrides *Overrides) Decision {
	profile, known := Profile(user.Role)
	if !known {
		return Decision{
			Result: ResultDeny,
			Reason: fmt.Sprintf("unknown role: %s", user.Role),
		}
	}

	if user.Role == "branch_manager" && user.Region == RegionAll {
		return Decision{
			Result: ResultDeny,
			Reason: "branch manager must select a specific region",
		}
	}

	hasHigh := false
	hasMed := false
	for _, c := range columns {
		switch c.Sensitivity {
		case catalog.SensitivityHigh:
			hasHigh = true
		case catalog.SensitivityMed:
			hasMed = true
		}
	}

	if hasHigh {
		if user.Role != "compliance_officer" && user.Role != "auditor" {
			return Decision{
				Result: ResultDeny,
				Reason: "high sensitivity data denied for this role. Consider requesting aggregated data instead.",
			}
		}

		maxRows := 100
		if user.Role == "auditor" {
			maxRows = 50
		}
		constraints := &Constraints{
			MinGroupSize:         DefaultMinGroupSize,
			MustMask:             true,
			MustLogAccess:        true,
			MustRedactNarratives: true,
			MaxRows:              maxRows,
			ForbidExport:         user.Role == "auditor",
		}
		finalize(constraints, user, overrides)
		return Decision{
			Result:      ResultAllowWithConstraints,
			Reason:      fmt.Sprintf("high sensitivity data allowed with masking for %s", user.Role),
			Constraints: constraints,
		}
	}

	if hasMed && !catalog.SensitivityMed.AtMost(profile.MaxSensitivity) {
		return Decision{
			Result: ResultDeny,
			Reason: "role does not have access to medium sensitivity data",
		}
	}

	constraints := &Constraints{MinGroupSize: DefaultMinGroupSize}
	finalize(constraints, user, overrides)
	return Decision{
		Result:      ResultAllow,
		Reason:      "query allowed for role",
		Constraints: constraints,
	}
}

// finalize applies the purpose merge, then the override merge, then the
// region filter, in that precedence order.
func finalize(c *Constraints, user UserAttributes, overrides *Overrides) {
	mergePurpose(c, user.Purpose)
	mergeOverrides(c, overrides)
	if user.RegionIsSpecific() && c.RegionFilter == "" {
		c.RegionFilter = user.Region
	}
}

// mergePurpose applies purpose-derived constraints to a non-DENY decision.
func mergePurpose(c *Constraints, purpose Purpose) {
	switch purpose {
	case PurposeReporting:
		c.AggregateToMonth = true
	case PurposeRegulatory:
		c.AggregateToQuarter = true
	case PurposeInvestigation:
		c.MustLogAccess = true
		c.ForbidExport = true
		if c.MaxRows == 0 || c.MaxRows > investigationMaxRows {
			c.MaxRows = investigationMaxRows
		}
	}
}

// mergeOverrides applies caller-supplied overrides with highest precedence.
// Overrides only tighten or redirect; they never clear a constraint.
func mergeOverrides(c *Constraints, overrides *Overrides) {
	if overrides == nil {
		return
	}
	if overrides.MinGroupSize != nil {
		c.MinGroupSize = *overrides.MinGroupSize
	}
	if overrides.ForceForbidExport {
		c.ForbidExport = true
	}
	if overrides.ForceMask {
		c.MustMask = true
	}
	if overrides.ForceRedact {
		c.MustRedactNarratives = true
	}
	if overrides.MaxRows != nil {
		c.MaxRows = *overrides.MaxRows
	}
	if overrides.ForceRegion != "" {
		c.RegionFilter = overrides.ForceRegion
	}
}
