package pipeline

import (
	"time"

	"trustmark-hq/polaris/pkg/planner"
	"trustmark-hq/polaris/pkg/policy"
	"trustmark-hq/polaris/pkg/quality"
	"trustmark-hq/polaris/pkg/warehouse"
)

// State identifies a position in the pipeline state machine. Stages are
// strictly sequential; terminal failure states return immediately.
type State string

const (
	StatePlanBuilt          State = "PlanBuilt"
	StatePolicyEvaluated    State = "PolicyEvaluated"
	StateConstraintsApplied State = "ConstraintsApplied"
	StateSQLCompiled        State = "SQLCompiled"
	StateQualityChecked     State = "QualityChecked"
	StateExecuted           State = "Executed"
	StateLineageRecorded    State = "LineageRecorded"
	StateEvidenceRecorded   State = "EvidenceRecorded"

	// Terminal failure states. None of them produce evidence.
	StateDenied          State = "Denied"
	StateInvalidPlan     State = "InvalidPlan"
	StateInvalidSQL      State = "InvalidSQL"
	StateQualityBlocked  State = "QualityBlocked"
	StateExecutionFailed State = "ExecutionFailed"
)

// Terminal reports whether the state is a terminal failure.
func (s State) Terminal() bool {
	switch s {
	case StateDenied, StateInvalidPlan, StateInvalidSQL, StateQualityBlocked, StateExecutionFailed:
		return true
	}
	return false
}

// Request is one analytics question entering the pipeline.
type Request struct {
	// Text is the natural-language request.
	Text string

	// User describes the requesting user.
	User policy.UserAttributes

	// Overrides are optional administrative policy overrides.
	Overrides *policy.Overrides
}

// Each stage value below is produced once by its stage function and
// never mutated afterwards; the next stage embeds it by value.

type builtStage struct {
	requestID string
	startedAt time.Time
	request   Request
	plan      *planner.QueryPlan
}

type evaluatedStage struct {
	builtStage
	decision policy.Decision
}

type constrainedStage struct {
	evaluatedStage
	constrained *planner.QueryPlan
}

type compiledStage struct {
	constrainedStage
	sqlText      string
	canonicalSQL string
	sqlHash      string
}

type checkedStage struct {
	compiledStage
	snapshot map[string]quality.Status
}

type executedStage struct {
	checkedStage
	result          *warehouse.Result
	suppressedWords int
}

// Outcome is the caller-visible result of a pipeline run. On terminal
// failure only the fields produced before the failing stage are set;
// Decision in particular is populated even on denial so callers can
// show why.
type Outcome struct {
	RequestID string             `json:"request_id"`
	State     State              `json:"state"`
	Plan      *planner.QueryPlan `json:"plan,omitempty"`
	Decision  *policy.Decision   `json:"decision,omitempty"`

	SQL     string `json:"sql,omitempty"`
	SQLHash string `json:"sql_hash,omitempty"`

	Quality map[string]quality.Status `json:"quality,omitempty"`

	Result   *warehouse.Result `json:"result,omitempty"`
	RowCount int               `json:"row_count"`

	LineageEventID string `json:"lineage_event_id,omitempty"`
	ExportPath     string `json:"export_path,omitempty"`

	Explanation string        `json:"explanation,omitempty"`
	Duration    time.Duration `json:"duration"`
}
