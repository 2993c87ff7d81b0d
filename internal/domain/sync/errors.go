package sync

import (
	"errors"

	"github.com/estatedesk/backend/internal/domain/shared"
)

// Error codes for the reconciliation taxonomy
const (
	CodeTransientExternal = "TRANSIENT_EXTERNAL"
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeDataShape         = "DATA_SHAPE"
	CodeNotRecoverable    = "NOT_RECOVERABLE"
	CodeSyncInProgress    = "SYNC_IN_PROGRESS"
	CodeAuthFailed        = "EXTERNAL_AUTH_FAILED"
)

var (
	// ErrTransientExternal marks rate-limit/timeout failures from the
	// external service; retried a bounded number of times, then recorded
	// as an item-level failure
	ErrTransientExternal = shared.NewDomainError(CodeTransientExternal, "Transient external service failure")

	// ErrNotRecoverable is returned when recovery is requested for a key
	// with no eligible deletion audit row
	ErrNotRecoverable = shared.NewDomainError(CodeNotRecoverable, "Record is not recoverable")

	// ErrSyncInProgress is returned when a pass is triggered while one is
	// already active; the trigger is rejected, not queued
	ErrSyncInProgress = shared.NewDomainError(CodeSyncInProgress, "A sync pass is already in progress")

	// ErrAuthFailed aborts the whole pass; the next scheduled tick retries
	ErrAuthFailed = shared.NewDomainError(CodeAuthFailed, "Authentication to external source failed")
)

// NewValidationError reports a business rule blocking a mutation,
// e.g. the active-contract deletion block. Not a bug; surfaced for manual
// review.
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeValidation, message)
}

// NewDataShapeError reports an unparseable cell value where the value is
// load-bearing (key matching); the row is skipped and logged.
func NewDataShapeError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeDataShape, message)
}

// IsTransient reports whether err is a transient external failure
func IsTransient(err error) bool {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code == CodeTransientExternal
	}
	return false
}
