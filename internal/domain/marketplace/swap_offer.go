package marketplace

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// MaxOfferMessageLength bounds the free-text message attached to an offer
const MaxOfferMessageLength = 2000

// SwapOffer proposes one of the offerer's items in exchange for a swap listing
type SwapOffer struct {
	shared.BaseAggregateRoot
	ListingID     uuid.UUID
	OffererID     uuid.UUID
	OfferedItemID uuid.UUID
	Message       string
	Status        OfferStatus
	RespondedAt   *time.Time
}

// NewSwapOffer creates a pending offer of offeredItem against listing.
// Checks run in the order Gone, WrongKind, NotOwner, SelfOffer.
func NewSwapOffer(listing *Listing, offeredItem ItemOwnership, offererID uuid.UUID, message string) (*SwapOffer, error) {
	if !listing.Active {
		return nil, ErrGone
	}
	if listing.Kind != ListingKindSwap {
		return nil, ErrWrongKind
	}
	if !offeredItem.OwnedBy(offererID) {
		return nil, ErrNotOwner.WithMessage("Only your own items can be offered in a swap")
	}
	if listing.IsLister(offererID) {
		return nil, ErrSelfOffer
	}
	message = strings.TrimSpace(message)
	if len(message) > MaxOfferMessageLength {
		return nil, shared.ErrInvalidInput.WithMessage("Offer message is too long")
	}

	o := &SwapOffer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ListingID:         listing.ID,
		OffererID:         offererID,
		OfferedItemID:     offeredItem.GetID(),
		Message:           message,
		Status:            OfferStatusPending,
	}
	o.AddDomainEvent(NewSwapOfferMadeEvent(o))
	return o, nil
}

// Respond applies the lister's answer. It may happen exactly once.
// Accepting does not touch the listing; the caller deactivates it in the same unit of work.
func (o *SwapOffer) Respond(actorID uuid.UUID, action ResponseAction) error {
	var target OfferStatus
	switch action {
	case ResponseAccept:
		target = OfferStatusAccepted
	case ResponseReject:
		target = OfferStatusRejected
	default:
		return ErrInvalidAction
	}

	if !o.Status.CanTransitionTo(target) {
		return ErrAlreadyResponded.WithMessage(fmt.Sprintf("Offer is already %s", o.Status))
	}

	now := time.Now().UTC()
	o.Status = target
	o.RespondedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewSwapOfferRespondedEvent(o, actorID))
	return nil
}

// IsActionable reports whether the lister can still answer the offer.
// Pending offers against a deactivated listing are stale and left untouched.
func (o *SwapOffer) IsActionable(listingActive bool) bool {
	return o.Status == OfferStatusPending && listingActive
}
