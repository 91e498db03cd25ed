package evidence

import "fmt"

// StorageError represents an error from the evidence storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory")
	Operation string // Operation that failed ("store", "query", "delete", ...)
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// DuplicateRecordError reports an attempt to store a second record under an
// existing request id. Evidence is write-once; this is always a caller bug.
type DuplicateRecordError struct {
	RequestID string
}

// Error implements the error interface.
func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("evidence record already exists for request %s", e.RequestID)
}

// NewDuplicateRecordError creates a new DuplicateRecordError.
func NewDuplicateRecordError(requestID string) *DuplicateRecordError {
	return &DuplicateRecordError{RequestID: requestID}
}

// RecorderError represents an error during evidence recording.
type RecorderError struct {
	RequestID string
	Cause     error
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("recorder error [request_id=%s]: %v", e.RequestID, e.Cause)
	}
	return fmt.Sprintf("recorder error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// NewRecorderError creates a new RecorderError.
func NewRecorderError(requestID string, cause error) *RecorderError {
	return &RecorderError{RequestID: requestID, Cause: cause}
}

// RetentionError represents an error during retention enforcement.
type RetentionError struct {
	RetentionDays int
	Cause         error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [retention_days=%d]: %v", e.RetentionDays, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new RetentionError.
func NewRetentionError(retentionDays int, cause error) *RetentionError {
	return &RetentionError{RetentionDays: retentionDays, Cause: cause}
}

// ExportError represents an error during evidence export.
type ExportError struct {
	Format      string
	RecordCount int
	Cause       error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{Format: format, RecordCount: recordCount, Cause: cause}
}
