package shared

import "fmt"

// ErrorCategory classifies a DomainError for callers and transport mapping
type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "validation"
	CategoryBusinessRule ErrorCategory = "business_rule"
	CategoryNotFound     ErrorCategory = "not_found"
	CategoryConflict     ErrorCategory = "conflict"
	CategoryIntegrity    ErrorCategory = "integrity"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Category ErrorCategory  `json:"category"`
	Field    string         `json:"field,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	cause    error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so wrapped copies compare equal to sentinels
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:     code,
		Message:  message,
		Category: CategoryBusinessRule,
	}
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:     "VALIDATION_FAILED",
		Message:  message,
		Category: CategoryValidation,
		Field:    field,
	}
}

// NewBusinessRuleError creates a business-rule violation carrying the figures behind it
func NewBusinessRuleError(code, message string, details map[string]any) *DomainError {
	return &DomainError{
		Code:     code,
		Message:  message,
		Category: CategoryBusinessRule,
		Details:  details,
	}
}

// NewIntegrityError wraps a failed write of a core row
func NewIntegrityError(operation string, cause error) *DomainError {
	return &DomainError{
		Code:     "INTEGRITY_FAILURE",
		Message:  "failed to " + operation,
		Category: CategoryIntegrity,
		cause:    cause,
	}
}

// NewNotFoundError creates a not-found error for the given resource
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Code:     ErrNotFound.Code,
		Message:  resource + " not found",
		Category: CategoryNotFound,
	}
}

// Common domain errors
var (
	ErrNotFound = &DomainError{
		Code: "NOT_FOUND", Message: "Resource not found", Category: CategoryNotFound,
	}
	ErrDuplicateNumber = &DomainError{
		Code: "DUPLICATE_NUMBER", Message: "Generated document number already exists", Category: CategoryConflict,
	}
	ErrInvalidState = &DomainError{
		Code: "INVALID_STATE", Message: "Operation not allowed in current state", Category: CategoryBusinessRule,
	}
)
