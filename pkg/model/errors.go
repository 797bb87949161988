package model

import "fmt"

// ValidationError reports an input that failed a shape or range check.
// Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError constructs a field-qualified validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SignatureError reports a missing signer or a failed signing attempt.
type SignatureError struct {
	Reason string
	Err    error
}

func (e *SignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signature failure: %s: %v", e.Reason, e.Err)
	}
	return "signature failure: " + e.Reason
}

func (e *SignatureError) Unwrap() error { return e.Err }

// OwnershipError reports a mutation attempted by a non-creator, or a
// mutation of a record that is no longer OPEN.
type OwnershipError struct {
	ID     string
	Reason string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("ownership check failed for rfq %s: %s", e.ID, e.Reason)
}

// RFQNotFoundError reports an id with no corresponding record where one
// was required (update/cancel/delete).
type RFQNotFoundError struct {
	ID string
}

func (e *RFQNotFoundError) Error() string {
	return fmt.Sprintf("rfq %s not found", e.ID)
}

// NetworkError wraps the last underlying cause after all retry attempts
// against the store are exhausted.
type NetworkError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
