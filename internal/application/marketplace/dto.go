package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/marketplace"
)

// CreateListingRequest represents a request to list an item
type CreateListingRequest struct {
	ItemID         uuid.UUID
	Kind           string
	Price          *decimal.Decimal
	DailyRate      *decimal.Decimal
	SwapPreference *string
}

// UpdateListingRequest represents a patch of listing terms
type UpdateListingRequest struct {
	Price          *decimal.Decimal
	DailyRate      *decimal.Decimal
	SwapPreference *string
}

// UpdateListingResult reports which fields changed
type UpdateListingResult struct {
	Listing       *ListingResponse `json:"listing"`
	UpdatedFields []string         `json:"updated_fields"`
}

// ListListingsRequest represents the public browse filter
type ListListingsRequest struct {
	Kind     string
	Page     int
	PageSize int
}

// BuyRequest represents a purchase intent
type BuyRequest struct {
	ListingID uuid.UUID
}

// RentRequest represents a rental intent. Dates use the YYYY-MM-DD form.
type RentRequest struct {
	ListingID uuid.UUID
	StartDate string
	EndDate   string
}

// RespondRequest carries the lister's answer
type RespondRequest struct {
	Action string
}

// MakeOfferRequest represents a swap offer
type MakeOfferRequest struct {
	ListingID     uuid.UUID
	OfferedItemID uuid.UUID
	Message       string
}

// ItemSummary is the item part of a listing or offer view
type ItemSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ItemID             uuid.UUID        `json:"item_id"`
	Item               *ItemSummary     `json:"item,omitempty"`
	ListerID           uuid.UUID        `json:"lister_id"`
	ListerUsername     string           `json:"lister_username,omitempty"`
	Kind               string           `json:"kind"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	DailyRate          *decimal.Decimal `json:"daily_rate,omitempty"`
	SwapPreference     *string          `json:"swap_preference,omitempty"`
	Active             bool             `json:"active"`
	DeactivatedAt      *time.Time       `json:"deactivated_at,omitempty"`
	DeactivationReason string           `json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TransactionResponse represents a sale or rental in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	ListingID   uuid.UUID       `json:"listing_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	Kind        string          `json:"kind"`
	Status      string          `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	StartDate   *string         `json:"start_date,omitempty"`
	EndDate     *string         `json:"end_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
}

// OfferResponse represents a swap offer in API responses
type OfferResponse struct {
	ID            uuid.UUID    `json:"id"`
	ListingID     uuid.UUID    `json:"listing_id"`
	OffererID     uuid.UUID    `json:"offerer_id"`
	OfferedItemID uuid.UUID    `json:"offered_item_id"`
	OfferedItem   *ItemSummary `json:"offered_item,omitempty"`
	Message       string       `json:"message,omitempty"`
	Status        string       `json:"status"`
	Actionable    bool         `json:"actionable"`
	CreatedAt     time.Time    `json:"created_at"`
	RespondedAt   *time.Time   `json:"responded_at,omitempty"`
}

// ToItemSummary converts a catalog item to its summary
func ToItemSummary(item *catalog.Item) *ItemSummary {
	if item == nil {
		return nil
	}
	return &ItemSummary{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		ImageURL:    item.ImageURL,
	}
}

// ToListingResponse converts a listing to its response; only the payload of its kind is set
func ToListingResponse(l *marketplace.Listing) ListingResponse {
	resp := ListingResponse{
		ID:                 l.ID,
		ItemID:             l.ItemID,
		ListerID:           l.ListerID,
		Kind:               string(l.Kind),
		Active:             l.Active,
		DeactivatedAt:      l.DeactivatedAt,
		DeactivationReason: string(l.Deactivation),
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
	switch l.Kind {
	case marketplace.ListingKindSale:
		price := l.Price
		resp.Price = &price
	case marketplace.ListingKindRental:
		rate := l.DailyRate
		resp.DailyRate = &rate
	case marketplace.ListingKindSwap:
		pref := l.SwapPreference
		resp.SwapPreference = &pref
	}
	return resp
}

// ToTransactionResponse converts a transaction to its response
func ToTransactionResponse(t *marketplace.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		ListingID:   t.ListingID,
		BuyerID:     t.BuyerID,
		Kind:        string(t.Kind),
		Status:      string(t.Status),
		TotalPrice:  t.TotalPrice,
		CreatedAt:   t.CreatedAt,
		RespondedAt: t.RespondedAt,
	}
	if t.Period != nil {
		start, end := t.Period.StartString(), t.Period.EndString()
		resp.StartDate = &start
		resp.EndDate = &end
	}
	return resp
}

// ToOfferResponse converts an offer to its response
func ToOfferResponse(o *marketplace.SwapOffer, listingActive bool) OfferResponse {
	return OfferResponse{
		ID:            o.ID,
		ListingID:     o.ListingID,
		OffererID:     o.OffererID,
		OfferedItemID: o.OfferedItemID,
		Message:       o.Message,
		Status:        string(o.Status),
		Actionable:    o.IsActionable(listingActive),
		CreatedAt:     o.CreatedAt,
		RespondedAt:   o.RespondedAt,
	}
}
