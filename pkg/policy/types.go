package policy

import (
	"trustmark-hq/polaris/pkg/catalog"
)

// Result is the outcome class of a policy evaluation.
type Result string

const (
	// ResultAllow permits the query without additional constraints beyond
	// the anonymity floor.
	ResultAllow Result = "ALLOW"

	// ResultAllowWithConstraints permits the query subject to the attached
	// constraint set.
	ResultAllowWithConstraints Result = "ALLOW_WITH_CONSTRAINTS"

	// ResultDeny rejects the query. A denied decision carries no constraints.
	ResultDeny Result = "DENY"
)

// Purpose is the declared purpose of a request, one of the enumerated
// processing purposes recognized by the constraint merge rules.
type Purpose string

const (
	PurposeReporting     Purpose = "reporting"
	PurposeAnalysis      Purpose = "analysis"
	PurposeInvestigation Purpose = "investigation"
	PurposeRegulatory    Purpose = "regulatory"
)

// RegionAll is the sentinel region meaning "unrestricted".
const RegionAll = "all"

// DefaultMinGroupSize is the anonymity floor applied to every allowed query
// unless overridden.
const DefaultMinGroupSize = 10

// investigationMaxRows caps row counts for investigation-purpose requests.
const investigationMaxRows = 200

// UserAttributes describes the requesting user. Immutable per request.
type UserAttributes struct {
	// Role is the user's enumerated role (e.g. "compliance_officer").
	Role string `json:"role"`

	// Region is the user's region, or RegionAll for unrestricted.
	Region string `json:"region"`

	// Purpose is the declared purpose of the request.
	Purpose Purpose `json:"purpose"`
}

// RegionIsSpecific reports whether the user selected a concrete region
// rather than the unrestricted sentinel.
func (u UserAttributes) RegionIsSpecific() bool {
	return u.Region != "" && u.Region != RegionAll
}

// RoleProfile is the fixed, process-wide access profile of one role.
// Profiles are never mutated at runtime.
type RoleProfile struct {
	// Level is the ordinal access level of the role.
	Level int

	// CanExport reports whether the role may export result artifacts.
	CanExport bool

	// MaxSensitivity is the highest sensitivity tier the role may reach.
	MaxSensitivity catalog.Sensitivity
}

// Constraints is the named constraint set attached to a non-DENY decision.
// A zero MaxRows or empty RegionFilter means the constraint is unset.
type Constraints struct {
	MinGroupSize         int    `json:"min_group_size"`
	MustMask             bool   `json:"must_mask,omitempty"`
	MustLogAccess        bool   `json:"must_log_access,omitempty"`
	MustRedactNarratives bool   `json:"must_redact_narratives,omitempty"`
	MaxRows              int    `json:"max_rows,omitempty"`
	ForbidExport         bool   `json:"forbid_export,omitempty"`
	RegionFilter         string `json:"region_filter,omitempty"`
	AggregateToMonth     bool   `json:"must_aggregate_to_month,omitempty"`
	AggregateToQuarter   bool   `json:"must_aggregate_to_quarter,omitempty"`
}

// Decision is the immutable result of a policy evaluation. Constraints is
// nil exactly when Result is ResultDeny, so "constraints present only for
// non-DENY" is carried by the type rather than by convention.
type Decision struct {
	Result      Result       `json:"result"`
	Reason      string       `json:"reason"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// Denied reports whether the decision rejects the request.
func (d Decision) Denied() bool {
	return d.Result == ResultDeny
}

// Overrides are caller-supplied administrative overrides, applied with
// highest precedence after the base decision and purpose merge. Overrides
// only tighten or redirect non-DENY outcomes; they can never relax a DENY.
type Overrides struct {
	// MinGroupSize replaces the anonymity floor when non-nil.
	MinGroupSize *int `json:"min_group_size,omitempty"`

	// ForceForbidExport forces the forbid_export constraint on.
	ForceForbidExport bool `json:"force_forbid_export,omitempty"`

	// ForceMask forces the must_mask constraint on.
	ForceMask bool `json:"force_mask,omitempty"`

	// ForceRedact forces the must_redact_narratives constraint on.
	ForceRedact bool `json:"force_redact,omitempty"`

	// MaxRows replaces the row cap when non-nil.
	MaxRows *int `json:"max_rows,omitempty"`

	// ForceRegion pins the region filter to an explicit region.
	ForceRegion string `json:"force_region,omitempty"`
}
