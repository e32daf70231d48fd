package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/shared"
	"github.com/swapmarket/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds a visible item by ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("find item", err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a visible item with a row lock held until the transaction ends
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("lock item", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds items by IDs, including deleted ones, keyed by ID
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	out := make(map[uuid.UUID]*catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, mapError("find items", err)
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByOwner finds all visible items of an owner, newest first
func (r *GormItemRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]catalog.Item, error) {
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, mapError("find items by owner", err)
	}

	items := make([]catalog.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// Create inserts a new item
func (r *GormItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return mapError("create item", r.db.WithContext(ctx).Create(models.ItemModelFromDomain(item)).Error)
}

// Save updates an existing item with an optimistic version check
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	result := r.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"title":       item.Title,
			"description": item.Description,
			"category":    item.Category,
			"image_url":   item.ImageURL,
			"version":     item.Version + 1,
			"updated_at":  item.UpdatedAt,
		})
	if result.Error != nil {
		return mapError("save item", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	item.Version++
	return nil
}

// Delete hides an item behind its DeletedAt tombstone
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ItemModel{}, "id = ?", id)
	if result.Error != nil {
		return mapError("delete item", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)
