package dto

import (
	"errors"
	"net/http"

	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain codes pass through unchanged.
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeServiceNotReady = "SERVICE_UNAVAILABLE"
)

// ErrRequestTooLarge reports a request body above the configured limit
var ErrRequestTooLarge = shared.NewDomainError(shared.CategoryValidation, ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")

// codeStatus holds the codes whose status differs from their category's
var codeStatus = map[string]int{
	"GONE":                 http.StatusGone,
	"WRONG_KIND":           http.StatusBadRequest,
	"SELF_TRANSACTION":     http.StatusBadRequest,
	"SELF_OFFER":           http.StatusBadRequest,
	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

var categoryStatus = map[shared.ErrorCategory]int{
	shared.CategoryValidation:         http.StatusBadRequest,
	shared.CategoryNotFound:           http.StatusNotFound,
	shared.CategoryAuthorization:      http.StatusForbidden,
	shared.CategoryStateConflict:      http.StatusConflict,
	shared.CategoryTransactionFailure: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the status code for a domain error
func GetHTTPStatus(de *shared.DomainError) int {
	if status, ok := codeStatus[de.Code]; ok {
		return status
	}
	if status, ok := categoryStatus[de.Category]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorDetails returns structured details for errors that carry them
func ErrorDetails(err error) map[string]any {
	var conflict *marketplace.DateConflictError
	if errors.As(err, &conflict) {
		return map[string]any{
			"conflicting_transaction_id": conflict.TransactionID.String(),
			"conflicting_start":          conflict.Conflicting.StartString(),
			"conflicting_end":            conflict.Conflicting.EndString(),
		}
	}
	return nil
}

// MapError converts an error into a status code and response envelope.
// Errors outside the domain vocabulary are reported as internal errors
// without leaking their message.
func MapError(err error, requestID string) (int, Response) {
	de, ok := shared.AsDomainError(err)
	if !ok {
		return http.StatusInternalServerError,
			NewErrorResponseWithRequestID(ErrCodeInternal, "An unexpected error occurred", requestID)
	}
	return GetHTTPStatus(de), NewErrorResponseWithDetails(de.Code, de.Message, requestID, ErrorDetails(err))
}
