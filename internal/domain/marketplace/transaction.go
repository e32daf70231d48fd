package marketplace

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// Transaction records a sale or rental commitment against a listing.
// Sales are created already completed. Rentals start pending and are
// answered once by the lister.
type Transaction struct {
	shared.BaseAggregateRoot
	ListingID   uuid.UUID
	BuyerID     uuid.UUID
	Kind        TransactionKind
	Status      TransactionStatus
	TotalPrice  decimal.Decimal
	Period      *DateRange
	RespondedAt *time.Time
}

// NewSaleTransaction records a purchase of listing by buyerID at the listed price
func NewSaleTransaction(listing *Listing, buyerID uuid.UUID) (*Transaction, error) {
	if err := listing.EnsureTransactable(buyerID, ListingKindSale); err != nil {
		return nil, err
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ListingID:         listing.ID,
		BuyerID:           buyerID,
		Kind:              TransactionKindSale,
		Status:            TransactionStatusCompleted,
		TotalPrice:        listing.Price,
	}
	t.AddDomainEvent(NewSaleCompletedEvent(t))
	return t, nil
}

// NewRentalTransaction records a pending rental request for period.
// Overlap with existing bookings is checked by the caller before insertion.
func NewRentalTransaction(listing *Listing, renterID uuid.UUID, period DateRange) (*Transaction, error) {
	if err := listing.EnsureTransactable(renterID, ListingKindRental); err != nil {
		return nil, err
	}
	days := period.Days()
	if days <= 0 {
		return nil, ErrInvalidDateRange
	}

	p := period
	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ListingID:         listing.ID,
		BuyerID:           renterID,
		Kind:              TransactionKindRental,
		Status:            TransactionStatusPending,
		TotalPrice:        listing.DailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2),
		Period:            &p,
	}
	t.AddDomainEvent(NewRentalRequestedEvent(t))
	return t, nil
}

// Respond applies the lister's answer to a pending rental.
// Accept completes the rental and reject cancels it; either may happen once.
// Anything no longer pending, sales included, reports ErrAlreadyResponded.
func (t *Transaction) Respond(actorID uuid.UUID, action ResponseAction) error {
	var target TransactionStatus
	switch action {
	case ResponseAccept:
		target = TransactionStatusCompleted
	case ResponseReject:
		target = TransactionStatusCancelled
	default:
		return ErrInvalidAction
	}

	if !t.Status.CanTransitionTo(target) {
		return ErrAlreadyResponded.WithMessage(fmt.Sprintf("Transaction is already %s", t.Status))
	}
	if t.Kind != TransactionKindRental {
		return ErrWrongKind
	}

	now := time.Now().UTC()
	t.Status = target
	t.RespondedAt = &now
	t.UpdatedAt = now
	t.AddDomainEvent(NewRentalRespondedEvent(t, actorID))
	return nil
}

// BlocksCalendar reports whether this transaction occupies its rental period
func (t *Transaction) BlocksCalendar() bool {
	if t.Kind != TransactionKindRental || t.Period == nil {
		return false
	}
	return t.Status == TransactionStatusPending || t.Status == TransactionStatusCompleted
}

// IsPending returns true if the transaction awaits a response
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}
