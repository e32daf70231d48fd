package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

func TestGormListingRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "lister")
	item := createItem(t, db, owner.ID, "Drill")
	listing := createListing(t, db, item, marketplace.ListingKindSale)

	found, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ItemID)
	assert.Equal(t, marketplace.ListingKindSale, found.Kind)
	assert.True(t, found.Price.Equal(listing.Price))
	assert.True(t, found.Active)
	assert.Equal(t, 1, found.Version)

	locked, err := repo.FindByIDForUpdate(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, locked.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{listing.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
}

func TestGormListingRepository_OneActiveListingPerItem(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "lister")
	item := createItem(t, db, owner.ID, "Drill")
	first := createListing(t, db, item, marketplace.ListingKindSale)

	exists, err := repo.ExistsActiveForItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	second, err := marketplace.NewListing(item, owner.ID, marketplace.ListingKindSwap, swapPayload())
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, second), marketplace.ErrAlreadyListed)

	require.NoError(t, first.Deactivate(owner.ID))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 2, first.Version)

	exists, err = repo.ExistsActiveForItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, repo.Create(ctx, second))
}

func TestGormListingRepository_SaveDetectsStaleVersion(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "lister")
	listing := createListing(t, db, createItem(t, db, owner.ID, "Drill"), marketplace.ListingKindSale)

	stale, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)

	require.NoError(t, listing.Deactivate(owner.ID))
	require.NoError(t, repo.Save(ctx, listing))

	require.NoError(t, stale.Deactivate(owner.ID))
	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.True(t, shared.IsRetryable(err))

	reloaded, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.DeactivationWithdrawn, reloaded.Deactivation)
	assert.NotNil(t, reloaded.DeactivatedAt)
}

func TestGormListingRepository_FindActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "lister")
	createListing(t, db, createItem(t, db, owner.ID, "A"), marketplace.ListingKindSale)
	createListing(t, db, createItem(t, db, owner.ID, "B"), marketplace.ListingKindRental)
	createListing(t, db, createItem(t, db, owner.ID, "C"), marketplace.ListingKindRental)
	gone := createListing(t, db, createItem(t, db, owner.ID, "D"), marketplace.ListingKindRental)
	require.NoError(t, gone.Deactivate(owner.ID))
	require.NoError(t, repo.Save(ctx, gone))

	all, total, err := repo.FindActive(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	rentals, total, err := repo.FindActive(ctx, shared.Filter{Filters: map[string]interface{}{"kind": "RENTAL"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, l := range rentals {
		assert.Equal(t, marketplace.ListingKindRental, l.Kind)
		assert.True(t, l.Active)
	}

	mine, err := repo.FindByLister(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 4)
}

func TestGormListingRepository_FindByIDForUpdate_QueryShape(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormListingRepository(db)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "item_id", "lister_id", "kind", "price", "daily_rate", "active", "version"}).
		AddRow(id, uuid.New(), uuid.New(), "SALE", "10.00", "0", true, 3)
	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	listing, err := repo.FindByIDForUpdate(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 3, listing.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormListingRepository_Save_QueryShape(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormListingRepository(db)

	listing := &marketplace.Listing{Kind: marketplace.ListingKindSale}
	listing.ID = uuid.New()
	listing.Version = 4

	mock.ExpectExec(`UPDATE "listings" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), listing)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 4, listing.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func swapPayload() marketplace.ListingPayload {
	pref := "a bicycle"
	return marketplace.ListingPayload{SwapPreference: &pref}
}
