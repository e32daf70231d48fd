package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
)

// TransactionUseCases is the transaction lifecycle surface the transaction handler drives
type TransactionUseCases interface {
	Buy(ctx context.Context, actorID uuid.UUID, req marketapp.BuyRequest) (*marketapp.TransactionResponse, error)
	Rent(ctx context.Context, actorID uuid.UUID, req marketapp.RentRequest) (*marketapp.TransactionResponse, error)
	RespondToRental(ctx context.Context, actorID, transactionID uuid.UUID, req marketapp.RespondRequest) (*marketapp.TransactionResponse, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]marketapp.TransactionResponse, error)
}

// BuyRequest is the body of POST /transactions/buy
type BuyRequest struct {
	ListingID string `json:"listing_id" binding:"required,uuid"`
}

// RentRequest is the body of POST /transactions/rent.
// Missing dates fall through to the domain, which rejects them as an invalid range.
type RentRequest struct {
	ListingID string `json:"listing_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"yyyymmdd"`
	EndDate   string `json:"end_date" binding:"yyyymmdd"`
}

// RespondRequest is the body of the respond endpoints
type RespondRequest struct {
	Action string `json:"action" binding:"required"`
}

// TransactionHandler handles sale and rental endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService TransactionUseCases
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService TransactionUseCases) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Buy completes a purchase of a sale listing
func (h *TransactionHandler) Buy(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	var req BuyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	txn, err := h.transactionService.Buy(c.Request.Context(), actorID, marketapp.BuyRequest{
		ListingID: parseUUID(req.ListingID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// Rent requests a rental period on a rental listing
func (h *TransactionHandler) Rent(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	var req RentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	txn, err := h.transactionService.Rent(c.Request.Context(), actorID, marketapp.RentRequest{
		ListingID: parseUUID(req.ListingID),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// Respond accepts or rejects a pending rental; lister only
func (h *TransactionHandler) Respond(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	txnID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req RespondRequest
	if !h.BindJSON(c, &req) {
		return
	}

	txn, err := h.transactionService.RespondToRental(c.Request.Context(), actorID, txnID, marketapp.RespondRequest{
		Action: req.Action,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// ListMine lists the actor's purchases and rentals
func (h *TransactionHandler) ListMine(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	txns, err := h.transactionService.ListMine(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txns)
}
