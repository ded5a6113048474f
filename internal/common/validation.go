package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator collects field errors for one row or object.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Err returns nil or an ErrInvalidInput-wrapped summary of every collected error.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(messages, "; "))
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value any) *ValidationError

func Required(fieldName string, value any) *ValidationError {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	return nil
}

func PositiveInt(fieldName string, value any) *ValidationError {
	n, ok := value.(int)
	if !ok || n < 1 {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be an integer >= 1"}
	}
	return nil
}

var reMoney = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// MoneyAmount accepts non-negative amounts with at most two fractional digits.
func MoneyAmount(fieldName string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok || !reMoney.MatchString(strings.TrimSpace(s)) {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a non-negative amount with 2 decimals"}
	}
	return nil
}

// DateOrEmpty accepts "" or an ISO YYYY-MM-DD date.
func DateOrEmpty(fieldName string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be YYYY-MM-DD"}
	}
	return nil
}

// CurrencyCode checks an ISO 4217 code against go-money's currency table.
func CurrencyCode(fieldName string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok || money.GetCurrency(s) == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a known ISO 4217 code"}
	}
	return nil
}

// IsValidationError reports whether err came from a Validator.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
