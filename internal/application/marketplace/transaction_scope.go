package marketplace

import (
	"context"

	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/marketplace"
)

// TransactionScope provides transactional access to marketplace repositories.
// All repository operations issued through the repositories handed to fn are
// part of one database transaction, committed when fn returns nil and rolled
// back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Listings() marketplace.ListingRepository
	Transactions() marketplace.TransactionRepository
	Offers() marketplace.SwapOfferRepository
	Items() catalog.ItemRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// It is used by tests and by tools that do not need atomicity.
type NoOpTransactionScope struct {
	listings     marketplace.ListingRepository
	transactions marketplace.TransactionRepository
	offers       marketplace.SwapOfferRepository
	items        catalog.ItemRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	listings marketplace.ListingRepository,
	transactions marketplace.TransactionRepository,
	offers marketplace.SwapOfferRepository,
	items catalog.ItemRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		listings:     listings,
		transactions: transactions,
		offers:       offers,
		items:        items,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Listings returns the listing repository
func (s *NoOpTransactionScope) Listings() marketplace.ListingRepository { return s.listings }

// Transactions returns the transaction repository
func (s *NoOpTransactionScope) Transactions() marketplace.TransactionRepository {
	return s.transactions
}

// Offers returns the swap offer repository
func (s *NoOpTransactionScope) Offers() marketplace.SwapOfferRepository { return s.offers }

// Items returns the item repository
func (s *NoOpTransactionScope) Items() catalog.ItemRepository { return s.items }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
