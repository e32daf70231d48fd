package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/swapmarket/backend/internal/application/catalog"
)

// ItemUseCases is the catalog surface the item handler drives
type ItemUseCases interface {
	Create(ctx context.Context, actorID uuid.UUID, req catalogapp.CreateItemRequest) (*catalogapp.ItemResponse, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]catalogapp.ItemResponse, error)
	Update(ctx context.Context, actorID, itemID uuid.UUID, req catalogapp.UpdateItemRequest) (*catalogapp.ItemResponse, error)
	Delete(ctx context.Context, actorID, itemID uuid.UUID) error
	RequestImageUpload(ctx context.Context, actorID, itemID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
}

// CreateItemRequest is the body of POST /items
type CreateItemRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Category    string `json:"category" binding:"required,max=100"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=1000"`
}

// UpdateItemRequest is the body of PUT /items/:id; absent fields stay unchanged
type UpdateItemRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=1000"`
}

// ImageUploadRequest is the body of POST /items/:id/image-upload
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ItemHandler handles item endpoints
type ItemHandler struct {
	BaseHandler
	itemService ItemUseCases
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService ItemUseCases) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Create adds an item to the actor's catalog
func (h *ItemHandler) Create(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	var req CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), actorID, catalogapp.CreateItemRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ListMine lists the actor's items
func (h *ItemHandler) ListMine(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	items, err := h.itemService.ListMine(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update edits item metadata
func (h *ItemHandler) Update(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), actorID, itemID, catalogapp.UpdateItemRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete removes an item that no active listing binds
func (h *ItemHandler) Delete(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.itemService.Delete(c.Request.Context(), actorID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RequestImageUpload returns a presigned URL for uploading the item image
func (h *ItemHandler) RequestImageUpload(c *gin.Context) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	upload, err := h.itemService.RequestImageUpload(c.Request.Context(), actorID, itemID, catalogapp.ImageUploadRequest{
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}
