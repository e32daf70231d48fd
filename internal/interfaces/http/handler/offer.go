package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
)

// OfferUseCases is the offer lifecycle surface the offer handler drives
type OfferUseCases interface {
	MakeOffer(ctx context.Context, actorID uuid.UUID, req marketapp.MakeOfferRequest) (*marketapp.OfferResponse, error)
	RespondToOffer(ctx context.Context, actorID, offerID uuid.UUID, req marketapp.RespondRequest) (*marketapp.OfferResponse, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]marketapp.OfferResponse, error)
}

// MakeOfferRequest is the body of POST /offers
type MakeOfferRequest struct {
	ListingID     string `json:"listing_id" binding:"required,uuid"`
	OfferedItemID string `json:"offered_item_id" binding:"required,uuid"`
	Message       string `json:"message" binding:"max=2000"`
}

// OfferHandler handles swap offer endpoints
type OfferHandler struct {
	BaseHandler
	offerService OfferUseCases
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerService OfferUseCases) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// Make proposes an owned item in exchange for a swap listing
func (h *OfferHandler) Make(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	var req MakeOfferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	offer, err := h.offerService.MakeOffer(c.Request.Context(), actorID, marketapp.MakeOfferRequest{
		ListingID:     parseUUID(req.ListingID),
		OfferedItemID: parseUUID(req.OfferedItemID),
		Message:       req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, offer)
}

// Respond accepts or rejects a pending offer; lister only
func (h *OfferHandler) Respond(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	offerID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req RespondRequest
	if !h.BindJSON(c, &req) {
		return
	}

	offer, err := h.offerService.RespondToOffer(c.Request.Context(), actorID, offerID, marketapp.RespondRequest{
		Action: req.Action,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, offer)
}

// ListMine lists the offers the actor has made
func (h *OfferHandler) ListMine(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	offers, err := h.offerService.ListMine(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, offers)
}
