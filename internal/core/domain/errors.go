package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMethodNotFound means the requested id is not in the method catalog.
	ErrMethodNotFound = errors.New("payment method not found")

	// ErrLimitsUnavailable means the limits query failed. The session still
	// opens; validation falls back to method-level bounds only.
	ErrLimitsUnavailable = errors.New("account limits unavailable")

	// ErrSessionNotFound means no open cashier session matches the id.
	ErrSessionNotFound = errors.New("cashier session not found")
)

type SubmissionErrorKind string

const (
	// SubmissionNetwork covers transient transport failures. Retry-safe: the
	// idempotency token guarantees the backend will not book a duplicate.
	SubmissionNetwork SubmissionErrorKind = "network_error"

	// SubmissionValidationRejected means the backend disagreed with the
	// client-side validation verdict. Terminal for this draft.
	SubmissionValidationRejected SubmissionErrorKind = "validation_rejected"

	// SubmissionDuplicateReference is an idempotency collision: the backend
	// already holds a transaction for this token. The original result is
	// attached when the backend echoes it.
	SubmissionDuplicateReference SubmissionErrorKind = "duplicate_reference"

	SubmissionUnauthorized SubmissionErrorKind = "unauthorized"
)

// SubmissionError classifies a failed call to the payments backend.
type SubmissionError struct {
	Kind    SubmissionErrorKind
	Message string

	// Original is set for DuplicateReference when the backend returns the
	// transaction it already booked under the same token.
	Original *TransactionResult
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed (%s): %s", e.Kind, e.Message)
}

// Retryable reports whether resubmitting the same draft is safe and useful.
func (e *SubmissionError) Retryable() bool {
	return e.Kind == SubmissionNetwork
}

// InvalidTransitionError is returned when a session event is not legal from
// the current step, e.g. confirming a draft that never passed validation.
type InvalidTransitionError struct {
	From  string
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %q is not allowed in step %q", e.Event, e.From)
}
