package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"github.com/swapmarket/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormListingRepository implements ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("find listing", err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate reads the listing with SELECT ... FOR UPDATE.
// The row lock lasts until the surrounding transaction ends.
func (r *GormListingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("lock listing", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds listings by IDs, keyed by ID
func (r *GormListingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*marketplace.Listing, error) {
	out := make(map[uuid.UUID]*marketplace.Listing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.ListingModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, mapError("find listings", err)
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// ExistsActiveForItem reports whether item has an active listing
func (r *GormListingRepository) ExistsActiveForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ListingModel{}).
		Where("item_id = ? AND active = ?", itemID, true).
		Count(&count).Error; err != nil {
		return false, mapError("count active listings", err)
	}
	return count > 0, nil
}

// FindActive returns one page of active listings, newest first, and the total count.
// The "kind" filter key narrows the result to one listing kind.
func (r *GormListingRepository) FindActive(ctx context.Context, filter shared.Filter) ([]marketplace.Listing, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ListingModel{}).Where("active = ?", true)
	if kind, ok := filter.Filters["kind"]; ok && kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, mapError("count active listings", err)
	}

	var rows []models.ListingModel
	if err := query.
		Order("created_at DESC").Order("id").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, mapError("find active listings", err)
	}
	return toListings(rows), total, nil
}

// FindByLister finds all listings created by an actor, newest first
func (r *GormListingRepository) FindByLister(ctx context.Context, listerID uuid.UUID) ([]marketplace.Listing, error) {
	var rows []models.ListingModel
	if err := r.db.WithContext(ctx).
		Where("lister_id = ?", listerID).
		Order("created_at DESC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, mapError("find listings by lister", err)
	}
	return toListings(rows), nil
}

// Create inserts a new listing. The partial unique index on active listings
// turns a concurrent second listing of the same item into ErrAlreadyListed.
func (r *GormListingRepository) Create(ctx context.Context, listing *marketplace.Listing) error {
	err := r.db.WithContext(ctx).Create(models.ListingModelFromDomain(listing)).Error
	if isDuplicateKey(err) {
		return marketplace.ErrAlreadyListed
	}
	return mapError("create listing", err)
}

// Save updates a listing, failing with shared.ErrConcurrencyConflict when the
// stored version moved since the listing was read
func (r *GormListingRepository) Save(ctx context.Context, listing *marketplace.Listing) error {
	result := r.db.WithContext(ctx).
		Model(&models.ListingModel{}).
		Where("id = ? AND version = ?", listing.ID, listing.Version).
		Updates(map[string]any{
			"price":           listing.Price,
			"daily_rate":      listing.DailyRate,
			"swap_preference": listing.SwapPreference,
			"active":          listing.Active,
			"deactivated_at":  listing.DeactivatedAt,
			"deactivation":    listing.Deactivation,
			"version":         listing.Version + 1,
			"updated_at":      listing.UpdatedAt,
		})
	if result.Error != nil {
		return mapError("save listing", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	listing.Version++
	return nil
}

func toListings(rows []models.ListingModel) []marketplace.Listing {
	out := make([]marketplace.Listing, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ marketplace.ListingRepository = (*GormListingRepository)(nil)
