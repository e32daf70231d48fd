package marketplace

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// Aggregate type names
const (
	AggregateTypeListing     = "Listing"
	AggregateTypeTransaction = "Transaction"
	AggregateTypeSwapOffer   = "SwapOffer"
)

// Event type constants
const (
	EventTypeListingCreated     = "ListingCreated"
	EventTypeListingUpdated     = "ListingUpdated"
	EventTypeListingDeactivated = "ListingDeactivated"
	EventTypeSaleCompleted      = "SaleCompleted"
	EventTypeRentalRequested    = "RentalRequested"
	EventTypeRentalResponded    = "RentalResponded"
	EventTypeSwapOfferMade      = "SwapOfferMade"
	EventTypeSwapOfferResponded = "SwapOfferResponded"
)

// AllEventTypes lists every marketplace event type
var AllEventTypes = []string{
	EventTypeListingCreated,
	EventTypeListingUpdated,
	EventTypeListingDeactivated,
	EventTypeSaleCompleted,
	EventTypeRentalRequested,
	EventTypeRentalResponded,
	EventTypeSwapOfferMade,
	EventTypeSwapOfferResponded,
}

// ListingCreatedEvent is raised when a listing is created
type ListingCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID   `json:"item_id"`
	Kind   ListingKind `json:"kind"`
}

// NewListingCreatedEvent creates a new ListingCreatedEvent
func NewListingCreatedEvent(l *Listing) *ListingCreatedEvent {
	return &ListingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingCreated, AggregateTypeListing, l.ID, l.ListerID),
		ItemID:          l.ItemID,
		Kind:            l.Kind,
	}
}

// ListingUpdatedEvent is raised when listing terms change
type ListingUpdatedEvent struct {
	shared.BaseDomainEvent
	Fields []string `json:"fields"`
}

// NewListingUpdatedEvent creates a new ListingUpdatedEvent
func NewListingUpdatedEvent(l *Listing, actorID uuid.UUID, fields []string) *ListingUpdatedEvent {
	return &ListingUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingUpdated, AggregateTypeListing, l.ID, actorID),
		Fields:          fields,
	}
}

// ListingDeactivatedEvent is raised when a listing leaves the active set
type ListingDeactivatedEvent struct {
	shared.BaseDomainEvent
	Kind   ListingKind        `json:"kind"`
	Reason DeactivationReason `json:"reason"`
}

// NewListingDeactivatedEvent creates a new ListingDeactivatedEvent
func NewListingDeactivatedEvent(l *Listing, actorID uuid.UUID, reason DeactivationReason) *ListingDeactivatedEvent {
	return &ListingDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingDeactivated, AggregateTypeListing, l.ID, actorID),
		Kind:            l.Kind,
		Reason:          reason,
	}
}

// SaleCompletedEvent is raised when a purchase is recorded
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	ListingID  uuid.UUID       `json:"listing_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(t *Transaction) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeTransaction, t.ID, t.BuyerID),
		ListingID:       t.ListingID,
		TotalPrice:      t.TotalPrice,
	}
}

// RentalRequestedEvent is raised when a rental booking is created
type RentalRequestedEvent struct {
	shared.BaseDomainEvent
	ListingID  uuid.UUID       `json:"listing_id"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewRentalRequestedEvent creates a new RentalRequestedEvent
func NewRentalRequestedEvent(t *Transaction) *RentalRequestedEvent {
	e := &RentalRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentalRequested, AggregateTypeTransaction, t.ID, t.BuyerID),
		ListingID:       t.ListingID,
		TotalPrice:      t.TotalPrice,
	}
	if t.Period != nil {
		e.StartDate = t.Period.StartString()
		e.EndDate = t.Period.EndString()
	}
	return e
}

// RentalRespondedEvent is raised when the lister answers a rental request
type RentalRespondedEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID         `json:"listing_id"`
	Status    TransactionStatus `json:"status"`
}

// NewRentalRespondedEvent creates a new RentalRespondedEvent
func NewRentalRespondedEvent(t *Transaction, actorID uuid.UUID) *RentalRespondedEvent {
	return &RentalRespondedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentalResponded, AggregateTypeTransaction, t.ID, actorID),
		ListingID:       t.ListingID,
		Status:          t.Status,
	}
}

// SwapOfferMadeEvent is raised when an offer is placed
type SwapOfferMadeEvent struct {
	shared.BaseDomainEvent
	ListingID     uuid.UUID `json:"listing_id"`
	OfferedItemID uuid.UUID `json:"offered_item_id"`
}

// NewSwapOfferMadeEvent creates a new SwapOfferMadeEvent
func NewSwapOfferMadeEvent(o *SwapOffer) *SwapOfferMadeEvent {
	return &SwapOfferMadeEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSwapOfferMade, AggregateTypeSwapOffer, o.ID, o.OffererID),
		ListingID:       o.ListingID,
		OfferedItemID:   o.OfferedItemID,
	}
}

// SwapOfferRespondedEvent is raised when the lister answers an offer
type SwapOfferRespondedEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID   `json:"listing_id"`
	Status    OfferStatus `json:"status"`
}

// NewSwapOfferRespondedEvent creates a new SwapOfferRespondedEvent
func NewSwapOfferRespondedEvent(o *SwapOffer, actorID uuid.UUID) *SwapOfferRespondedEvent {
	return &SwapOfferRespondedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSwapOfferResponded, AggregateTypeSwapOffer, o.ID, actorID),
		ListingID:       o.ListingID,
		Status:          o.Status,
	}
}
