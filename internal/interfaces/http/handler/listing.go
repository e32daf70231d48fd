package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"github.com/swapmarket/backend/internal/interfaces/http/dto"
)

// ListingUseCases is the listing lifecycle surface the listing handler drives
type ListingUseCases interface {
	Create(ctx context.Context, actorID uuid.UUID, req marketapp.CreateListingRequest) (*marketapp.ListingResponse, error)
	Update(ctx context.Context, actorID, listingID uuid.UUID, req marketapp.UpdateListingRequest) (*marketapp.UpdateListingResult, error)
	Deactivate(ctx context.Context, actorID, listingID uuid.UUID) error
	GetByID(ctx context.Context, listingID uuid.UUID) (*marketapp.ListingResponse, error)
	ListActive(ctx context.Context, req marketapp.ListListingsRequest) (*shared.Paginated[marketapp.ListingResponse], error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]marketapp.ListingResponse, error)
}

// ListingTransactionLister lists the sales and rentals recorded against a listing
type ListingTransactionLister interface {
	ListForListing(ctx context.Context, actorID, listingID uuid.UUID) ([]marketapp.TransactionResponse, error)
}

// ListingOfferLister lists the swap offers recorded against a listing
type ListingOfferLister interface {
	ListForListing(ctx context.Context, actorID, listingID uuid.UUID) ([]marketapp.OfferResponse, error)
}

// CreateListingRequest is the body of POST /listings.
// Only the payload field of the chosen kind is read.
type CreateListingRequest struct {
	ItemID         string           `json:"item_id" binding:"required,uuid"`
	Kind           string           `json:"kind" binding:"required"`
	Price          *decimal.Decimal `json:"price"`
	DailyRate      *decimal.Decimal `json:"daily_rate"`
	SwapPreference *string          `json:"swap_preference" binding:"omitempty,max=2000"`
}

// UpdateListingRequest is the body of PUT /listings/:id
type UpdateListingRequest struct {
	Price          *decimal.Decimal `json:"price"`
	DailyRate      *decimal.Decimal `json:"daily_rate"`
	SwapPreference *string          `json:"swap_preference" binding:"omitempty,max=2000"`
}

// ListListingsQuery holds the public browse filter
type ListListingsQuery struct {
	Kind string `form:"kind"`
	dto.PageQuery
}

// ListingHandler handles listing endpoints
type ListingHandler struct {
	BaseHandler
	listingService ListingUseCases
	transactions   ListingTransactionLister
	offers         ListingOfferLister
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService ListingUseCases, transactions ListingTransactionLister, offers ListingOfferLister) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		transactions:   transactions,
		offers:         offers,
	}
}

// Create lists an owned item
func (h *ListingHandler) Create(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	var req CreateListingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), actorID, marketapp.CreateListingRequest{
		ItemID:         parseUUID(req.ItemID),
		Kind:           req.Kind,
		Price:          req.Price,
		DailyRate:      req.DailyRate,
		SwapPreference: req.SwapPreference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, listing)
}

// Update changes the terms of an active listing
func (h *ListingHandler) Update(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	listingID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req UpdateListingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.listingService.Update(c.Request.Context(), actorID, listingID, marketapp.UpdateListingRequest{
		Price:          req.Price,
		DailyRate:      req.DailyRate,
		SwapPreference: req.SwapPreference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Deactivate withdraws a listing and returns its final state
func (h *ListingHandler) Deactivate(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	listingID, ok := h.PathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.listingService.Deactivate(ctx, actorID, listingID); err != nil {
		h.HandleError(c, err)
		return
	}
	listing, err := h.listingService.GetByID(ctx, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// Get returns one listing, active or not
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, ok := h.PathID(c)
	if !ok {
		return
	}
	listing, err := h.listingService.GetByID(c.Request.Context(), listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// ListActive is the public browse endpoint
func (h *ListingHandler) ListActive(c *gin.Context) {
	var q ListListingsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.listingService.ListActive(c.Request.Context(), marketapp.ListListingsRequest{
		Kind:     q.Kind,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListMine lists the actor's listings, inactive ones included
func (h *ListingHandler) ListMine(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	listings, err := h.listingService.ListMine(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listings)
}

// ListTransactions lists sales and rentals against a listing; lister only
func (h *ListingHandler) ListTransactions(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	listingID, ok := h.PathID(c)
	if !ok {
		return
	}
	txns, err := h.transactions.ListForListing(c.Request.Context(), actorID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txns)
}

// ListOffers lists swap offers against a listing; lister only
func (h *ListingHandler) ListOffers(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	listingID, ok := h.PathID(c)
	if !ok {
		return
	}
	offers, err := h.offers.ListForListing(c.Request.Context(), actorID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, offers)
}
