// Package domain holds the error taxonomy shared by every service layer.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so transports can map it to a status.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindValidation    ErrorKind = "INVALID_INPUT"
	KindForbidden     ErrorKind = "FORBIDDEN"
	KindUnauthorized  ErrorKind = "UNAUTHORIZED"
	KindQuotaExceeded ErrorKind = "QUOTA_EXCEEDED"
	KindDependency    ErrorKind = "DEPENDENCY_FAULT"
)

// Error is a typed failure returned across the service boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewNotFoundError reports that an entity id does not resolve.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("No %s with the id of %s", entity, id)}
}

// NewValidationError reports a schema, date or format violation.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewForbiddenError reports an authenticated actor that is neither owner nor admin.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError reports a missing or invalid authorization context.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewQuotaExceededError reports that a user already holds the maximum number of bookings.
func NewQuotaExceededError(message string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message}
}

// NewDependencyError wraps an unexpected store failure. Message is user-facing;
// err is kept for logs only.
func NewDependencyError(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}

// Classify passes domain errors through untouched and converts anything else
// into a dependency fault carrying message.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	return NewDependencyError(message, err)
}
