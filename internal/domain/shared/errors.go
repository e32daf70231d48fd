package shared

import "errors"

// ErrorCategory groups error codes by how callers are expected to react
type ErrorCategory string

const (
	// CategoryValidation covers malformed or missing input rejected before any lookup
	CategoryValidation ErrorCategory = "VALIDATION"
	// CategoryNotFound covers references to absent entities
	CategoryNotFound ErrorCategory = "NOT_FOUND"
	// CategoryAuthorization covers actors lacking the required relation to an entity
	CategoryAuthorization ErrorCategory = "AUTHORIZATION"
	// CategoryStateConflict covers entities outside the required lifecycle state
	CategoryStateConflict ErrorCategory = "STATE_CONFLICT"
	// CategoryTransactionFailure covers atomic commits that could not be completed
	CategoryTransactionFailure ErrorCategory = "TRANSACTION_FAILURE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Category ErrorCategory `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is matches a sentinel even when the message was specialised.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error carrying a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{
		Code:     e.Code,
		Message:  message,
		Category: e.Category,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(category ErrorCategory, code, message string) *DomainError {
	return &DomainError{
		Code:     code,
		Message:  message,
		Category: category,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CategoryNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError(CategoryStateConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError(CategoryValidation, "INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CategoryTransactionFailure, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrTransactionFailed   = NewDomainError(CategoryTransactionFailure, "TRANSACTION_FAILED", "The operation could not be committed")
	ErrUnauthorized        = NewDomainError(CategoryAuthorization, "UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CategoryAuthorization, "FORBIDDEN", "Access to this resource is forbidden")
)

// AsDomainError extracts the DomainError from an error chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CategoryOf returns the category of a domain error.
// Errors that are not domain errors are reported as transaction failures.
func CategoryOf(err error) ErrorCategory {
	if de, ok := AsDomainError(err); ok && de.Category != "" {
		return de.Category
	}
	return CategoryTransactionFailure
}

// IsRetryable reports whether the operation that produced err may be re-run.
// Only optimistic concurrency conflicts qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
