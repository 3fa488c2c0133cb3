package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned when the caller does not own the workspace
	ErrAccessDenied = errors.New("access denied")

	// ErrNotRefreshable is returned when a widget kind has no refresh behavior
	ErrNotRefreshable = errors.New("widget is not refreshable")
)

// Collaborator error codes
const (
	CodeInsufficientScope = "insufficient_scope"
	CodeUnauthorized      = "unauthorized"
	CodeRateLimited       = "rate_limited"
	CodeUpstreamError     = "upstream_error"
	CodeNotConfigured     = "not_configured"
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CollaboratorError reports a failed call to an external system
type CollaboratorError struct {
	Collaborator string
	Code         string
	Message      string
	Err          error
}

func (e *CollaboratorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Collaborator, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Collaborator, e.Code)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err as a collaborator failure with the given code
func NewCollaboratorError(collaborator, code string, err error) *CollaboratorError {
	ce := &CollaboratorError{Collaborator: collaborator, Code: code, Err: err}
	if err != nil {
		ce.Message = err.Error()
	}
	return ce
}

// CodeForStatus maps an upstream HTTP status to a collaborator error code
func CodeForStatus(status int) string {
	switch status {
	case 401:
		return CodeUnauthorized
	case 403:
		return CodeInsufficientScope
	case 429:
		return CodeRateLimited
	default:
		return CodeUpstreamError
	}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
