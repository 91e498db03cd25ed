package pipeline

import (
	"fmt"
	"strings"

	"trustmark-hq/polaris/pkg/policy"
)

// InvalidPlanError reports a request that could not be resolved to a
// metric in the catalog. Terminal; no SQL is ever produced.
type InvalidPlanError struct {
	Request string
	Err     error
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("no executable plan for request %q: %v", e.Request, e.Err)
}

func (e *InvalidPlanError) Unwrap() error {
	return e.Err
}

// NewInvalidPlanError creates a new InvalidPlanError.
func NewInvalidPlanError(request string, err error) *InvalidPlanError {
	return &InvalidPlanError{Request: request, Err: err}
}

// PolicyDeniedError reports a DENY decision. It carries the full
// decision so callers can show why, and a suggested alternative for
// narrative-class denials.
type PolicyDeniedError struct {
	Decision   policy.Decision
	Suggestion string
}

func (e *PolicyDeniedError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("query denied: %s (%s)", e.Decision.Reason, e.Suggestion)
	}
	return fmt.Sprintf("query denied: %s", e.Decision.Reason)
}

// NewPolicyDeniedError creates a new PolicyDeniedError. A suggestion is
// attached when the denied request wanted narrative text, since an
// aggregated form of the same question is usually grantable.
func NewPolicyDeniedError(decision policy.Decision, wantedNarrative bool) *PolicyDeniedError {
	e := &PolicyDeniedError{Decision: decision}
	if wantedNarrative {
		e.Suggestion = "try asking for aggregated counts instead of narrative text"
	}
	return e
}

// SQLValidationError reports compiled SQL rejected by the safety
// validator. Terminal; the statement never reaches the warehouse.
type SQLValidationError struct {
	SQL string
	Err error
}

func (e *SQLValidationError) Error() string {
	return fmt.Sprintf("compiled SQL failed validation: %v", e.Err)
}

func (e *SQLValidationError) Unwrap() error {
	return e.Err
}

// NewSQLValidationError creates a new SQLValidationError.
func NewSQLValidationError(sql string, err error) *SQLValidationError {
	return &SQLValidationError{SQL: sql, Err: err}
}

// QualityBlockedError reports data products that failed the quality
// gate. Terminal; execution never starts.
type QualityBlockedError struct {
	Products []string
}

func (e *QualityBlockedError) Error() string {
	return fmt.Sprintf("data products not cleared for querying: %s", strings.Join(e.Products, ", "))
}

// NewQualityBlockedError creates a new QualityBlockedError.
func NewQualityBlockedError(products []string) *QualityBlockedError {
	return &QualityBlockedError{Products: products}
}

// ExecutionError wraps a warehouse failure with request context.
type ExecutionError struct {
	SQLHash string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(sqlHash string, err error) *ExecutionError {
	return &ExecutionError{SQLHash: sqlHash, Err: err}
}
