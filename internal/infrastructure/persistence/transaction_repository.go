package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"github.com/swapmarket/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError("find transaction", err)
	}
	return model.ToDomain(), nil
}

// FindByBuyer finds all transactions created by an actor, newest first
func (r *GormTransactionRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]marketplace.Transaction, error) {
	return r.find(ctx, "find transactions by buyer", "buyer_id = ?", buyerID)
}

// FindByListing finds all transactions recorded against a listing, newest first
func (r *GormTransactionRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]marketplace.Transaction, error) {
	return r.find(ctx, "find transactions by listing", "listing_id = ?", listingID)
}

func (r *GormTransactionRepository) find(ctx context.Context, op, query string, arg any) ([]marketplace.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, mapError(op, err)
	}
	return toTransactions(rows), nil
}

// QueryOverlapping returns transactions of kind on listingID whose half-open
// period intersects r, skipping the excluded statuses
func (r *GormTransactionRepository) QueryOverlapping(
	ctx context.Context,
	listingID uuid.UUID,
	kind marketplace.TransactionKind,
	excluded []marketplace.TransactionStatus,
	period marketplace.DateRange,
) ([]marketplace.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("listing_id = ? AND kind = ?", listingID, kind).
		Where("start_date < ? AND end_date > ?", period.End, period.Start)
	if len(excluded) > 0 {
		query = query.Where("status NOT IN ?", excluded)
	}

	var rows []models.TransactionModel
	if err := query.Order("start_date").Order("created_at").Find(&rows).Error; err != nil {
		return nil, mapError("query overlapping rentals", err)
	}
	return toTransactions(rows), nil
}

// Create inserts a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, t *marketplace.Transaction) error {
	return mapError("create transaction", r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(t)).Error)
}

// Save updates a transaction with an optimistic version check
func (r *GormTransactionRepository) Save(ctx context.Context, t *marketplace.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND version = ?", t.ID, t.Version).
		Updates(map[string]any{
			"status":       t.Status,
			"responded_at": t.RespondedAt,
			"version":      t.Version + 1,
			"updated_at":   t.UpdatedAt,
		})
	if result.Error != nil {
		return mapError("save transaction", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	t.Version++
	return nil
}

func toTransactions(rows []models.TransactionModel) []marketplace.Transaction {
	out := make([]marketplace.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ marketplace.TransactionRepository = (*GormTransactionRepository)(nil)
