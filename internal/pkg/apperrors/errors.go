package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInactiveCustomer is reserved for operations that require an active account.
	ErrInactiveCustomer = errors.New("customer is inactive")

	ErrDatabase = errors.New("database error")

	// ErrPartialWrite marks a multi-record write that stopped after the first record
	// was persisted. The aggregate is left inconsistent until repaired.
	ErrPartialWrite = errors.New("partial multi-record write")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")
)

const (
	CodeNotFound      = "CUSTOMER_NOT_FOUND"
	CodeAlreadyExists = "CUSTOMER_ALREADY_EXISTS"
	CodeInactive      = "CUSTOMER_INACTIVE"
	CodeInvalidData   = "INVALID_DATA"
	CodeUnauthorized  = "AUTHENTICATION_FAILED"
	CodeInternal      = "INTERNAL_ERROR"
	CodeDatabase      = "DB_ERROR"
	CodeIntegrityRisk = "INTEGRITY_RISK"
)

type ValidationError struct {
	Field   string
	Message string
	// Fields maps every invalid field to its message. Field and Message repeat
	// the first entry.
	Fields  map[string]string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {

	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// NewFieldsValidationError reports several invalid fields at once. first names
// the field surfaced through Field and Message.
func NewFieldsValidationError(first string, fields map[string]string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: first, Message: fields[first], Fields: fields})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    CodeDatabase,
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

// WrapPartialWrite reports that the first record of a multi-record write was
// committed and the second failed. Both ErrPartialWrite and cause stay matchable.
func WrapPartialWrite(cause error, message string) error {
	return &AppError{
		Code:    CodeIntegrityRisk,
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrPartialWrite, cause),
	}
}

// Code returns the stable external code for err.
func Code(err error) string {
	var validationError *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPartialWrite):
		return CodeInternal
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrInactiveCustomer):
		return CodeInactive
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidArgument), errors.As(err, &validationError):
		return CodeInvalidData
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
