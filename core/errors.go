package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return "validation failed"
	}
	return err.Err.Error()
}

// NotFoundError is returned when a requested resource does not exist (404).
type NotFoundError struct{ msg string }

func NewNotFoundError(msg string) *NotFoundError { return &NotFoundError{msg: msg} }
func (err NotFoundError) Error() string         { return err.msg }

// PermissionError is returned when the caller is not allowed to act on a resource (403).
type PermissionError struct{ msg string }

func NewPermissionError(msg string) *PermissionError { return &PermissionError{msg: msg} }
func (err PermissionError) Error() string           { return err.msg }

// ConflictError is returned when a resource clashes with an existing one (409).
type ConflictError struct{ msg string }

func NewConflictError(msg string) *ConflictError { return &ConflictError{msg: msg} }
func (err ConflictError) Error() string         { return err.msg }

// AuthError is returned when the caller's credentials are missing or invalid (401).
type AuthError struct{ msg string }

func NewAuthError(msg string) *AuthError { return &AuthError{msg: msg} }
func (err AuthError) Error() string     { return err.msg }

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
