package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// MaxSwapPreferenceLength bounds the swap preference text
const MaxSwapPreferenceLength = 2000

// ItemOwnership is the view of a catalog item needed to bind a listing or offer to it
type ItemOwnership interface {
	GetID() uuid.UUID
	OwnedBy(actorID uuid.UUID) bool
}

// ListingPayload carries the kind-specific terms of a listing.
// Only the field matching the listing kind is read.
type ListingPayload struct {
	Price          *decimal.Decimal
	DailyRate      *decimal.Decimal
	SwapPreference *string
}

// DeactivationReason records why a listing left the active set
type DeactivationReason string

const (
	DeactivationWithdrawn    DeactivationReason = "WITHDRAWN"
	DeactivationSold         DeactivationReason = "SOLD"
	DeactivationSwapAccepted DeactivationReason = "SWAP_ACCEPTED"
)

// Listing is a commercial offer over exactly one item.
// Listings are never hard-deleted; they leave visibility by deactivation.
type Listing struct {
	shared.BaseAggregateRoot
	ItemID         uuid.UUID
	ListerID       uuid.UUID
	Kind           ListingKind
	Price          decimal.Decimal
	DailyRate      decimal.Decimal
	SwapPreference string
	Active         bool
	DeactivatedAt  *time.Time
	Deactivation   DeactivationReason
}

// NewListing creates an active listing of the given kind over item.
// The actor must own the item and the payload must carry the field the kind requires.
func NewListing(item ItemOwnership, actorID uuid.UUID, kind ListingKind, payload ListingPayload) (*Listing, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if !item.OwnedBy(actorID) {
		return nil, ErrNotOwner
	}

	l := &Listing{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            item.GetID(),
		ListerID:          actorID,
		Kind:              kind,
		Active:            true,
	}

	switch kind {
	case ListingKindSale:
		price, err := requirePositive(payload.Price, "price")
		if err != nil {
			return nil, err
		}
		l.Price = price
	case ListingKindRental:
		rate, err := requirePositive(payload.DailyRate, "daily_rate")
		if err != nil {
			return nil, err
		}
		l.DailyRate = rate
	case ListingKindSwap:
		pref, err := requirePreference(payload.SwapPreference)
		if err != nil {
			return nil, err
		}
		l.SwapPreference = pref
	}

	l.AddDomainEvent(NewListingCreatedEvent(l))
	return l, nil
}

// IsLister reports whether actorID controls the listing
func (l *Listing) IsLister(actorID uuid.UUID) bool {
	return l.ListerID == actorID
}

// EnsureLister fails with ErrNotLister unless actorID is the lister
func (l *Listing) EnsureLister(actorID uuid.UUID) error {
	if !l.IsLister(actorID) {
		return ErrNotLister
	}
	return nil
}

// Update applies the fields of patch relevant to the listing kind and returns
// the names of the fields that changed. Foreign-kind fields are ignored.
func (l *Listing) Update(actorID uuid.UUID, patch ListingPayload) ([]string, error) {
	if err := l.EnsureLister(actorID); err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, ErrInactive
	}

	changed := make([]string, 0, 1)
	switch l.Kind {
	case ListingKindSale:
		if patch.Price != nil {
			price, err := requirePositive(patch.Price, "price")
			if err != nil {
				return nil, err
			}
			if !price.Equal(l.Price) {
				l.Price = price
				changed = append(changed, "price")
			}
		}
	case ListingKindRental:
		if patch.DailyRate != nil {
			rate, err := requirePositive(patch.DailyRate, "daily_rate")
			if err != nil {
				return nil, err
			}
			if !rate.Equal(l.DailyRate) {
				l.DailyRate = rate
				changed = append(changed, "daily_rate")
			}
		}
	case ListingKindSwap:
		if patch.SwapPreference != nil {
			pref, err := requirePreference(patch.SwapPreference)
			if err != nil {
				return nil, err
			}
			if pref != l.SwapPreference {
				l.SwapPreference = pref
				changed = append(changed, "swap_preference")
			}
		}
	}

	if len(changed) > 0 {
		l.Touch()
		l.AddDomainEvent(NewListingUpdatedEvent(l, actorID, changed))
	}
	return changed, nil
}

// Deactivate withdraws the listing on behalf of its lister
func (l *Listing) Deactivate(actorID uuid.UUID) error {
	if err := l.EnsureLister(actorID); err != nil {
		return err
	}
	if !l.Active {
		return ErrAlreadyInactive
	}
	l.deactivate(actorID, DeactivationWithdrawn)
	return nil
}

// EnsureTransactable checks that actorID may commit against the listing with
// an operation that requires the given kind. Checks run in the order
// Gone, WrongKind, then self-dealing.
func (l *Listing) EnsureTransactable(actorID uuid.UUID, kind ListingKind) error {
	if !l.Active {
		return ErrGone
	}
	if l.Kind != kind {
		return ErrWrongKind
	}
	if l.IsLister(actorID) {
		if kind == ListingKindSwap {
			return ErrSelfOffer
		}
		return ErrSelfTransaction
	}
	return nil
}

// MarkSold deactivates a sale listing consumed by a purchase
func (l *Listing) MarkSold(buyerID uuid.UUID) error {
	if !l.Active {
		return ErrGone
	}
	l.deactivate(buyerID, DeactivationSold)
	return nil
}

// MarkSwapped deactivates a swap listing consumed by an accepted offer
func (l *Listing) MarkSwapped(actorID uuid.UUID) error {
	if !l.Active {
		return ErrGone
	}
	l.deactivate(actorID, DeactivationSwapAccepted)
	return nil
}

func (l *Listing) deactivate(actorID uuid.UUID, reason DeactivationReason) {
	now := time.Now().UTC()
	l.Active = false
	l.DeactivatedAt = &now
	l.Deactivation = reason
	l.UpdatedAt = now
	l.AddDomainEvent(NewListingDeactivatedEvent(l, actorID, reason))
}

func requirePositive(v *decimal.Decimal, field string) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, ErrInvalidPayload.WithMessage(field + " is required for this listing kind")
	}
	if !v.IsPositive() {
		return decimal.Zero, ErrInvalidPayload.WithMessage(field + " must be greater than zero")
	}
	return v.Round(2), nil
}

func requirePreference(v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", ErrInvalidPayload.WithMessage("swap_preference is required for swap listings")
	}
	pref := strings.TrimSpace(*v)
	if len(pref) > MaxSwapPreferenceLength {
		return "", ErrInvalidPayload.WithMessage("swap_preference is too long")
	}
	return pref, nil
}
