package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"github.com/swapmarket/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSwapOfferRepository implements SwapOfferRepository using GORM
type GormSwapOfferRepository struct {
	db *gorm.DB
}

// NewGormSwapOfferRepository creates a new GormSwapOfferRepository
func NewGormSwapOfferRepository(db *gorm.DB) *GormSwapOfferRepository {
	return &GormSwapOfferRepository{db: db}
}

// FindByID finds an offer by ID
func (r *GormSwapOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.SwapOffer, error) {
	var model models.SwapOfferModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("find offer", err)
	}
	return model.ToDomain(), nil
}

// FindByListing finds offers targeting a listing, oldest first
func (r *GormSwapOfferRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]marketplace.SwapOffer, error) {
	return r.find(ctx, "find offers by listing", "created_at ASC", "listing_id = ?", listingID)
}

// FindByOfferer finds offers made by an actor, newest first
func (r *GormSwapOfferRepository) FindByOfferer(ctx context.Context, offererID uuid.UUID) ([]marketplace.SwapOffer, error) {
	return r.find(ctx, "find offers by offerer", "created_at DESC", "offerer_id = ?", offererID)
}

func (r *GormSwapOfferRepository) find(ctx context.Context, op, order, query string, arg any) ([]marketplace.SwapOffer, error) {
	var rows []models.SwapOfferModel
	if err := r.db.WithContext(ctx).Where(query, arg).Order(order).Order("id").Find(&rows).Error; err != nil {
		return nil, mapError(op, err)
	}
	out := make([]marketplace.SwapOffer, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a new offer
func (r *GormSwapOfferRepository) Create(ctx context.Context, o *marketplace.SwapOffer) error {
	return mapError("create offer", r.db.WithContext(ctx).Create(models.SwapOfferModelFromDomain(o)).Error)
}

// Save updates an offer with an optimistic version check
func (r *GormSwapOfferRepository) Save(ctx context.Context, o *marketplace.SwapOffer) error {
	result := r.db.WithContext(ctx).
		Model(&models.SwapOfferModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"status":       o.Status,
			"responded_at": o.RespondedAt,
			"version":      o.Version + 1,
			"updated_at":   o.UpdatedAt,
		})
	if result.Error != nil {
		return mapError("save offer", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	o.Version++
	return nil
}

var _ marketplace.SwapOfferRepository = (*GormSwapOfferRepository)(nil)
