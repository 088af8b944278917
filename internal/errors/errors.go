// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrPositionNotFound = errors.New("position not found")
	ErrNoActiveStore    = errors.New("position store not initialized")
)

// InvalidSpecError represents a malformed option contract spec.
// Pricing refuses to run on one of these; they are always caller bugs
// or bad input data, never market conditions.
type InvalidSpecError struct {
	Field string
	Value interface{}
	Hint  string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid option spec: %s (%v): %s", e.Field, e.Value, e.Hint)
}

// NewInvalidSpecError creates a new InvalidSpecError.
func NewInvalidSpecError(field string, value interface{}, hint string) *InvalidSpecError {
	return &InvalidSpecError{
		Field: field,
		Value: value,
		Hint:  hint,
	}
}

// InsufficientInputError indicates a required input was not supplied by
// either the call or configuration defaults.
type InsufficientInputError struct {
	Field string
	Hint  string
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("insufficient input: %s: %s", e.Field, e.Hint)
}

// NewInsufficientInputError creates a new InsufficientInputError.
func NewInsufficientInputError(field, hint string) *InsufficientInputError {
	return &InsufficientInputError{Field: field, Hint: hint}
}

// NoDataError marks a single item (one underlying, one position) for which
// market or chain data was unavailable. It never aborts a batch.
type NoDataError struct {
	DataType   string
	Underlying string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no %s data available for %s", e.DataType, e.Underlying)
}

// NewNoDataError creates a new NoDataError.
func NewNoDataError(dataType, underlying string) *NoDataError {
	return &NoDataError{DataType: dataType, Underlying: underlying}
}

// BudgetWarning is a non-fatal condition surfaced alongside a still-returned
// sizing result when estimated monthly cost exceeds the configured budget.
type BudgetWarning struct {
	MonthlyCost float64 `json:"monthly_cost"`
	Budget      float64 `json:"budget"`
	Utilization float64 `json:"utilization_percent"`
}

func (e *BudgetWarning) Error() string {
	return fmt.Sprintf("hedge budget exceeded: estimated monthly cost %.2f against budget %.2f (%.1f%%)",
		e.MonthlyCost, e.Budget, e.Utilization)
}

// NewBudgetWarning creates a new BudgetWarning.
func NewBudgetWarning(monthlyCost, budget, utilization float64) *BudgetWarning {
	return &BudgetWarning{
		MonthlyCost: monthlyCost,
		Budget:      budget,
		Utilization: utilization,
	}
}

// ValidationError represents a fatal configuration validation error.
// It names the offending field and value plus a remediation hint, and is
// always raised before any computation runs.
type ValidationError struct {
	Field string
	Value interface{}
	Hint  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Hint)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, hint string) *ValidationError {
	return &ValidationError{
		Field: field,
		Value: value,
		Hint:  hint,
	}
}

// StoreError represents a persistence-layer error.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{Operation: operation, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
