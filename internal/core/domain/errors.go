package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no submission has the requested id.
	ErrNotFound = errors.New("submission not found")

	// ErrInvalidTransition is returned when a decision targets a submission
	// that is no longer pending.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMalformedPayload is returned when an inline photo cannot be decoded.
	ErrMalformedPayload = errors.New("malformed photo payload")

	// ErrPersistence wraps any storage failure.
	ErrPersistence = errors.New("persistence failure")

	// ErrForbidden is returned when someone other than the reviewer decides.
	ErrForbidden = errors.New("actor is not the reviewer")
)

// Field names carried by ValidationError.
const (
	FieldPayload   = "payload"
	FieldSubmitter = "submitter_id"
	FieldSpecies   = "species"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldPhoto     = "photo"
)

// ValidationError reports a user-correctable problem with one input field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // Optional cause
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError is a small constructor used across the services.
func NewValidationError(field, reason string, cause error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: cause}
}

// AsValidationError extracts a ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// PersistenceError wraps a storage error so that errors.Is(err, ErrPersistence)
// holds while the driver error stays inspectable.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}
