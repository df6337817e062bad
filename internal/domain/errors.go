package domain

import (
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
)

// DomainError represents a domain-specific error. MessageKey, when set, is an
// i18n key the HTTP boundary resolves using the request locale; Message is the
// untranslated fallback.
type DomainError struct {
	Code       ErrorCode
	Message    string
	MessageKey string
	Cause      error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

// WithKey attaches an i18n message key to the error.
func (e *DomainError) WithKey(key string) *DomainError {
	e.MessageKey = key
	return e
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewInvalidCredentialsError(message string) *DomainError {
	return NewError(CodeInvalidCredentials, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewServiceUnavailableError(message string, cause error) *DomainError {
	return NewError(CodeServiceUnavailable, message, cause)
}

// ValidationError describes a single rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the typed error list produced by request validation.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeMissingField),
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeInvalidFormat),
		Message: fmt.Sprintf("%s has invalid format: %v", field, value),
	}
}

func NewOutOfRangeError(field string, value, min, max interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeOutOfRange),
		Message: fmt.Sprintf("%s value %v is out of range [%v, %v]", field, value, min, max),
	}
}

func NewFieldError(field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeValidation),
		Message: message,
	}
}
