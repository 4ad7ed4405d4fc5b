package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies a pipeline error. Fatal categories halt the run;
// everything recoverable is carried as findings on reports instead of
// surfacing here.
type Category string

const (
	// Fatal categories that abort the pipeline
	CategoryIntegrity        Category = "INTEGRITY"
	CategoryBiasViolation    Category = "BIAS_VIOLATION"
	CategoryInsufficientData Category = "INSUFFICIENT_DATA"
	CategoryConfiguration    Category = "CONFIG"

	// Recoverable categories surfaced by collaborators
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// ValidationError is a categorized error with the component and
// operation that produced it plus the quantitative signal that
// triggered it.
type ValidationError struct {
	Category   Category
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
	}
	if e.Underlying != nil {
		fmt.Fprintf(&sb, ": %v", e.Underlying)
	}
	return sb.String()
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether this error should halt the pipeline.
func (e *ValidationError) IsFatal() bool {
	switch e.Category {
	case CategoryIntegrity, CategoryBiasViolation, CategoryInsufficientData, CategoryConfiguration:
		return true
	}
	return false
}

// WithContext attaches a named quantitative signal to the error.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a categorized validation error.
func New(category Category, component, operation, message string) *ValidationError {
	return &ValidationError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with pipeline context. Returns nil when
// err is nil.
func Wrap(err error, category Category, component, operation string) *ValidationError {
	if err == nil {
		return nil
	}
	return &ValidationError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// NewIntegrityError creates a fatal data-integrity error. The caller
// should attach the measured quantity that tripped the gate via
// WithContext so user-facing output can show it.
func NewIntegrityError(component, operation, message string) *ValidationError {
	return New(CategoryIntegrity, component, operation, message)
}

// NewBiasViolation creates a fatal critical-bias-test error.
func NewBiasViolation(component, operation, message string) *ValidationError {
	return New(CategoryBiasViolation, component, operation, message)
}

// NewInsufficientDataError creates a fatal too-few-folds error.
func NewInsufficientDataError(component, operation, message string) *ValidationError {
	return New(CategoryInsufficientData, component, operation, message)
}

// HasCategory reports whether err (or anything it wraps) is a
// ValidationError with the given category.
func HasCategory(err error, category Category) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Category == category
	}
	return false
}

// IsIntegrityError reports whether err is a fatal integrity error.
func IsIntegrityError(err error) bool {
	return HasCategory(err, CategoryIntegrity)
}

// IsBiasViolation reports whether err is a critical bias failure.
func IsBiasViolation(err error) bool {
	return HasCategory(err, CategoryBiasViolation)
}

// IsInsufficientData reports whether err is a too-few-folds failure.
func IsInsufficientData(err error) bool {
	return HasCategory(err, CategoryInsufficientData)
}
