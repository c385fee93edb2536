package util

import (
	"fmt"

	"algoritmia_backend/pkg/validation"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by a service either wraps one of these or
// is treated as internal.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrUserNotFound          = kind(ErrNotFound, "user not found")
	ErrCourseNotFound        = kind(ErrNotFound, "course not found")
	ErrDifficultyNotFound    = kind(ErrNotFound, "difficulty not found")
	ErrMissionNotFound       = kind(ErrNotFound, "mission not found")
	ErrSessionNotFound       = kind(ErrNotFound, "reinforcement session not found")
	ErrStudentNotEnrolled    = kind(ErrNotFound, "student is not enrolled in the course")
	ErrTeacherNotAssigned    = kind(ErrNotFound, "teacher is not assigned to the course")
	ErrEmailRegistered       = kind(ErrConflict, "email already registered")
	ErrDNIRegistered         = kind(ErrConflict, "dni already registered")
	ErrInvalidCredentials    = kind(ErrUnauthorized, "invalid credentials")
	ErrInvalidCoursePassword = kind(ErrUnauthorized, "invalid course password")
	ErrTokenRevoked          = kind(ErrUnauthorized, "token revoked")
	ErrAccountInactive       = kind(ErrUnauthorized, "account no longer active")
	ErrPermissionDenied      = kind(ErrForbidden, "permission denied")
	ErrNotAssigned           = kind(ErrForbidden, "no active relationship with the course")
)

type kindError struct {
	kind error
	msg  string
}

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError carries field-scoped failures detected before persistence.
type ValidationError struct {
	Fields []validation.FieldError
}

func NewValidationError(fields ...validation.FieldError) error {
	return &ValidationError{Fields: fields}
}

// FieldInvalid is a shortcut for a single-field validation failure.
func FieldInvalid(field, format string, args ...interface{}) error {
	return NewValidationError(validation.FieldError{Field: field, Error: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Fields[0].Field, e.Fields[0].Error)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
