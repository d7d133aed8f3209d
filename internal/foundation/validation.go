// Package foundation holds small generic helpers shared by the configuration
// layer.
package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// Validator checks one aspect of a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult is the outcome of one or more validators.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid is a passing result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid is a failing result carrying errs.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Errors: errs}
}

// NewValidationError creates a FieldError.
func NewValidationError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// Combine merges two results; the merge is valid only if both are.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}
	return Invalid(append(append([]FieldError{}, vr.Errors...), other.Errors...)...)
}

// ToError returns nil for a valid result, otherwise a validation error listing
// every failure. The failing field names are kept in the error context.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	fields := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		messages = append(messages, fe.Error())
		if fe.Field != "" {
			fields = append(fields, fe.Field)
		}
	}
	return errors.ValidationError(strings.Join(messages, "; ")).
		WithContext("fields", strings.Join(fields, ",")).
		Build()
}

// ValidatorChain runs validators in order and collects every failure.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Validate runs all validators; it does not stop at the first failure.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, v := range vc.validators {
		result = result.Combine(v(value))
	}
	return result
}
