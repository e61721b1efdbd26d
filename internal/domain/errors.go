package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Submission pipeline errors
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeMissingField    ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat   ErrorCode = "INVALID_FORMAT"
	CodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
	CodeQuizNotFound    ErrorCode = "QUIZ_NOT_FOUND"
	CodeTransientDB     ErrorCode = "TRANSIENT_DB_ERROR"
	CodeProcessing      ErrorCode = "PROCESSING_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
	Stack   string                 `json:"-"`
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

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail entry surfaced to clients in the error envelope.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil).WithContext("requiresAuth", true)
}

func NewQuizNotFoundError(slug string) *DomainError {
	return NewError(CodeQuizNotFound, "Quiz not found", nil).WithContext("quizId", slug)
}

func NewUnsupportedTypeError(quizType string) *DomainError {
	return NewError(CodeUnsupportedType, fmt.Sprintf("Unsupported quiz type: %s", quizType), nil).
		WithContext("type", quizType)
}

// NewProcessingError records the stack at the failure site; it is only shown outside production.
func NewProcessingError(message string, err error) *DomainError {
	e := NewError(CodeProcessing, message, err)
	e.Stack = string(debug.Stack())
	return e
}

// ValidationError describes one offending request field.
type ValidationError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned when one or more request fields are invalid.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields lists the offending field names in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field string, reason string) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: reason}
}

// TransientDBError marks lock and serialization conflicts that are safe to retry.
type TransientDBError struct {
	Op    string
	Cause error
}

func (e *TransientDBError) Error() string {
	return fmt.Sprintf("transient database error during %s: %v", e.Op, e.Cause)
}

func (e *TransientDBError) Unwrap() error {
	return e.Cause
}

// IsTransientDBError reports whether err carries a TransientDBError.
func IsTransientDBError(err error) bool {
	var t *TransientDBError
	return errors.As(err, &t)
}
