// Package apperror defines the error taxonomy shared by the store and the
// HTTP layer. Each kind maps to exactly one HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// InternalError is anything unexpected, usually a database failure.
	InternalError Kind = iota
	// ValidationError is bad input: missing fields, duplicate username, weak password.
	ValidationError
	// AuthError means the caller is not authenticated or gave bad credentials.
	AuthError
	// AuthorizationError means the caller is authenticated but not allowed.
	AuthorizationError
	// NotFoundError means the target entity does not exist.
	NotFoundError
	// ConflictError is a unique constraint violation that slipped past validation.
	ConflictError
)

func (k Kind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case AuthError:
		return "auth"
	case AuthorizationError:
		return "authorization"
	case NotFoundError:
		return "not_found"
	case ConflictError:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError carries a user-facing message and an optional wrapped cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case ValidationError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case AuthorizationError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewValidationError(message string, err error) *AppError {
	return New(ValidationError, message, err)
}

func NewAuthError(message string, err error) *AppError {
	return New(AuthError, message, err)
}

func NewAuthorizationError(message string, err error) *AppError {
	return New(AuthorizationError, message, err)
}

func NewNotFoundError(message string, err error) *AppError {
	return New(NotFoundError, message, err)
}

func NewConflictError(message string, err error) *AppError {
	return New(ConflictError, message, err)
}

func NewInternalError(message string, err error) *AppError {
	return New(InternalError, message, err)
}

// From returns err as an *AppError, wrapping anything else as internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("internal server error", err)
}

// StatusCode maps any error to an HTTP status.
func StatusCode(err error) int {
	return From(err).StatusCode()
}

func is(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func IsValidation(err error) bool    { return is(err, ValidationError) }
func IsAuth(err error) bool          { return is(err, AuthError) }
func IsAuthorization(err error) bool { return is(err, AuthorizationError) }
func IsNotFound(err error) bool      { return is(err, NotFoundError) }
func IsConflict(err error) bool      { return is(err, ConflictError) }
func IsInternal(err error) bool      { return is(err, InternalError) }
