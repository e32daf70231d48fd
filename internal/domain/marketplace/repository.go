package marketplace

import (
	"context"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// ListingRepository defines the interface for listing persistence
type ListingRepository interface {
	// FindByID finds a listing by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	// FindByIDForUpdate finds a listing and holds an exclusive row lock on it
	// until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Listing, error)
	// FindByIDs finds listings by IDs, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Listing, error)
	// ExistsActiveForItem reports whether item has an active listing
	ExistsActiveForItem(ctx context.Context, itemID uuid.UUID) (bool, error)
	// FindActive returns one page of active listings, optionally filtered by
	// the "kind" filter key
	FindActive(ctx context.Context, filter shared.Filter) ([]Listing, int64, error)
	// FindByLister finds all listings created by an actor, newest first
	FindByLister(ctx context.Context, listerID uuid.UUID) ([]Listing, error)
	// Create inserts a new listing. A concurrent active listing for the same
	// item surfaces as ErrAlreadyListed.
	Create(ctx context.Context, listing *Listing) error
	// Save updates a listing, failing with shared.ErrConcurrencyConflict when
	// the stored version moved
	Save(ctx context.Context, listing *Listing) error
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	OverlapQuery
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// FindByBuyer finds all transactions created by an actor, newest first
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Transaction, error)
	// FindByListing finds all transactions recorded against a listing, newest first
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]Transaction, error)
	// Create inserts a new transaction
	Create(ctx context.Context, t *Transaction) error
	// Save updates a transaction with an optimistic version check
	Save(ctx context.Context, t *Transaction) error
}

// SwapOfferRepository defines the interface for swap offer persistence
type SwapOfferRepository interface {
	// FindByID finds an offer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SwapOffer, error)
	// FindByListing finds offers targeting a listing, oldest first
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]SwapOffer, error)
	// FindByOfferer finds offers made by an actor, newest first
	FindByOfferer(ctx context.Context, offererID uuid.UUID) ([]SwapOffer, error)
	// Create inserts a new offer
	Create(ctx context.Context, o *SwapOffer) error
	// Save updates an offer with an optimistic version check
	Save(ctx context.Context, o *SwapOffer) error
}
