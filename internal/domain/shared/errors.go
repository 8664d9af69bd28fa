package shared

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers. They are stable and part of the API contract.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeBusinessRuleViolation  = "BUSINESS_RULE_VIOLATION"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrInsufficientStock) matches every insufficient stock error
// regardless of its message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists          = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput           = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict    = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidStateTransition = NewDomainError(CodeInvalidStateTransition, "Operation not allowed in current state")
	ErrInsufficientStock      = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrBusinessRuleViolation  = NewDomainError(CodeBusinessRuleViolation, "Business rule violated")
)

// NotFound builds a NOT_FOUND error naming the missing resource.
func NotFound(resource string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, id))
}

// InvalidInput builds an INVALID_INPUT error.
func InvalidInput(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// InsufficientStock builds an INSUFFICIENT_STOCK error naming the product or batch.
func InsufficientStock(subject string, requested, available int64) *DomainError {
	if available < 0 {
		return NewDomainError(CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s: requested %d", subject, requested))
	}
	return NewDomainError(CodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", subject, requested, available))
}

// InvalidTransition builds an INVALID_STATE_TRANSITION error.
func InvalidTransition(entity string, from, to any) *DomainError {
	return NewDomainError(CodeInvalidStateTransition,
		fmt.Sprintf("Cannot transition %s from %v to %v", entity, from, to))
}

// RuleViolation builds a BUSINESS_RULE_VIOLATION error.
func RuleViolation(format string, args ...any) *DomainError {
	return NewDomainError(CodeBusinessRuleViolation, fmt.Sprintf(format, args...))
}

// ErrorCode extracts the domain error code from err, or "" when err is not a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
