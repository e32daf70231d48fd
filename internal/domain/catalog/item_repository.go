package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds a visible item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByIDForUpdate finds a visible item and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByIDs finds items by IDs, including deleted ones, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Item, error)
	// FindByOwner finds all visible items of an owner, newest first
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Item, error)
	// Create inserts a new item
	Create(ctx context.Context, item *Item) error
	// Save updates an existing item
	Save(ctx context.Context, item *Item) error
	// Delete hides an item while keeping its row for history
	Delete(ctx context.Context, id uuid.UUID) error
}
