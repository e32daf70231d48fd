package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/catalog"
)

// CreateItemRequest represents a request to create an item
type CreateItemRequest struct {
	Title       string
	Description string
	Category    string
	ImageURL    string
}

// UpdateItemRequest represents a metadata patch
type UpdateItemRequest struct {
	Title       *string
	Description *string
	Category    *string
	ImageURL    *string
}

// ImageUploadRequest represents a request for a presigned image upload
type ImageUploadRequest struct {
	ContentType string
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageUploadResponse carries the presigned upload target
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	ImageURL   string    `json:"image_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ToItemResponse converts a domain item to its response
func ToItemResponse(item *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		ImageURL:    item.ImageURL,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
