package persistence

import (
	"context"
	"errors"

	appmarket "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, committing when fn returns nil.
// Errors returned by fn pass through unchanged; begin and commit failures are mapped.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appmarket.TransactionalRepositories) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormTransactionalRepositories{tx: tx})
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil && errors.Is(err, fnErr) {
		return fnErr
	}
	return mapError("commit transaction", err)
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Listings returns the listing repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Listings() marketplace.ListingRepository {
	return NewGormListingRepository(r.tx)
}

// Transactions returns the transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Transactions() marketplace.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// Offers returns the swap offer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Offers() marketplace.SwapOfferRepository {
	return NewGormSwapOfferRepository(r.tx)
}

// Items returns the item repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Items() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

var _ appmarket.TransactionScope = (*GormTransactionScope)(nil)

var _ appmarket.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
