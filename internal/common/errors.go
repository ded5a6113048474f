package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrMissingInput = errors.New("missing input file")
	ErrExtraction   = errors.New("text extraction failed")
	ErrLookup       = errors.New("price lookup failed")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// MissingInputError reports a batch step run before its input exists.
func MissingInputError(path string) error {
	return NewAppError("MISSING_INPUT", fmt.Sprintf("%s not found; run the parse step first", path), ErrMissingInput)
}

// ExtractionError wraps a per-document failure.
func ExtractionError(path string, cause error) error {
	return NewAppError("EXTRACT_ERROR", path, errors.Join(ErrExtraction, cause))
}

// ErrorCode returns the AppError code in err's chain, or "" when there is none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
