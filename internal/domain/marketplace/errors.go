package marketplace

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// Lifecycle errors. Codes are stable and exposed to API clients.
var (
	ErrNotOwner         = shared.NewDomainError(shared.CategoryAuthorization, "NOT_OWNER", "Actor does not own the item")
	ErrAlreadyListed    = shared.NewDomainError(shared.CategoryStateConflict, "ALREADY_LISTED", "Item already has an active listing")
	ErrInvalidPayload   = shared.NewDomainError(shared.CategoryValidation, "INVALID_PAYLOAD", "Listing payload is missing the field required by its kind")
	ErrNotLister        = shared.NewDomainError(shared.CategoryAuthorization, "NOT_LISTER", "Only the lister may perform this action")
	ErrInactive         = shared.NewDomainError(shared.CategoryStateConflict, "INACTIVE", "Listing is not active")
	ErrAlreadyInactive  = shared.NewDomainError(shared.CategoryStateConflict, "ALREADY_INACTIVE", "Listing is already inactive")
	ErrGone             = shared.NewDomainError(shared.CategoryStateConflict, "GONE", "Listing is no longer active")
	ErrWrongKind        = shared.NewDomainError(shared.CategoryStateConflict, "WRONG_KIND", "Listing kind does not support this operation")
	ErrSelfTransaction  = shared.NewDomainError(shared.CategoryAuthorization, "SELF_TRANSACTION", "Actors cannot transact against their own listing")
	ErrSelfOffer        = shared.NewDomainError(shared.CategoryAuthorization, "SELF_OFFER", "Actors cannot make offers against their own listing")
	ErrInvalidDateRange = shared.NewDomainError(shared.CategoryValidation, "INVALID_DATE_RANGE", "Invalid rental date range")
	ErrDateConflict     = shared.NewDomainError(shared.CategoryStateConflict, "DATE_CONFLICT", "Requested dates overlap an existing rental")
	ErrAlreadyResponded = shared.NewDomainError(shared.CategoryStateConflict, "ALREADY_RESPONDED", "A response has already been recorded")
	ErrInvalidKind      = shared.NewDomainError(shared.CategoryValidation, "INVALID_INPUT", "Unknown listing kind")
	ErrInvalidAction    = shared.NewDomainError(shared.CategoryValidation, "INVALID_INPUT", "Response action must be ACCEPT or REJECT")
)

// DateConflictError reports the rental that collides with a requested period
type DateConflictError struct {
	*shared.DomainError
	TransactionID uuid.UUID
	Conflicting   DateRange
}

// NewDateConflictError builds the conflict error for an existing rental
func NewDateConflictError(existing *Transaction) *DateConflictError {
	var period DateRange
	if existing.Period != nil {
		period = *existing.Period
	}
	return &DateConflictError{
		DomainError:   ErrDateConflict.WithMessage(fmt.Sprintf("Requested dates overlap an existing rental for %s", period)),
		TransactionID: existing.ID,
		Conflicting:   period,
	}
}

// Unwrap exposes the underlying domain error to errors.As
func (e *DateConflictError) Unwrap() error {
	return e.DomainError
}
