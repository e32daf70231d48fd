package marketplace

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/identity"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

func newListingService(f *fixture) *ListingService {
	return NewListingService(f.coordinator, f.listings, f.items, f.users, nil)
}

func TestListingService_Create(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("creates active listing", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		item := newItem(t, owner)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.listings.On("ExistsActiveForItem", mock.Anything, item.ID).Return(false, nil)
		f.listings.On("Create", mock.Anything, mock.AnythingOfType("*marketplace.Listing")).Return(nil)

		resp, err := svc.Create(ctx, owner, CreateListingRequest{ItemID: item.ID, Kind: "rent", DailyRate: decPtr("9.999")})

		require.NoError(t, err)
		assert.Equal(t, "RENTAL", resp.Kind)
		assert.True(t, resp.Active)
		assert.Equal(t, "10", resp.DailyRate.String())
		assert.Nil(t, resp.Price)
		assert.Equal(t, []string{marketplace.EventTypeListingCreated}, f.publisher.types())
	})

	t.Run("invalid kind fails before lookup", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)

		_, err := svc.Create(ctx, owner, CreateListingRequest{ItemID: uuid.New(), Kind: "auction"})

		assert.Equal(t, shared.CategoryValidation, shared.CategoryOf(err))
		f.items.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("not owner wins over already listed and bad payload", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		item := newItem(t, uuid.New())
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)

		_, err := svc.Create(ctx, owner, CreateListingRequest{ItemID: item.ID, Kind: "SALE"})

		assert.True(t, errors.Is(err, marketplace.ErrNotOwner))
		f.listings.AssertNotCalled(t, "ExistsActiveForItem", mock.Anything, mock.Anything)
	})

	t.Run("already listed wins over bad payload", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		item := newItem(t, owner)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.listings.On("ExistsActiveForItem", mock.Anything, item.ID).Return(true, nil)

		_, err := svc.Create(ctx, owner, CreateListingRequest{ItemID: item.ID, Kind: "SALE"})

		assert.True(t, errors.Is(err, marketplace.ErrAlreadyListed))
	})

	t.Run("missing payload", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		item := newItem(t, owner)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.listings.On("ExistsActiveForItem", mock.Anything, item.ID).Return(false, nil)

		_, err := svc.Create(ctx, owner, CreateListingRequest{ItemID: item.ID, Kind: "SWAP", Price: decPtr("5")})

		assert.True(t, errors.Is(err, marketplace.ErrInvalidPayload))
	})

	t.Run("concurrent listing surfaces at insert", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		item := newItem(t, owner)
		f.items.On("FindByIDForUpdate", mock.Anything, item.ID).Return(item, nil)
		f.listings.On("ExistsActiveForItem", mock.Anything, item.ID).Return(false, nil)
		f.listings.On("Create", mock.Anything, mock.Anything).Return(marketplace.ErrAlreadyListed)

		_, err := svc.Create(ctx, owner, CreateListingRequest{ItemID: item.ID, Kind: "SALE", Price: decPtr("5")})

		assert.True(t, errors.Is(err, marketplace.ErrAlreadyListed))
		assert.Empty(t, f.publisher.types())
	})
}

func TestListingService_Update(t *testing.T) {
	ctx := context.Background()
	lister := uuid.New()

	t.Run("applies relevant fields only", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.listings.On("Save", mock.Anything, listing).Return(nil)

		res, err := svc.Update(ctx, lister, listing.ID, UpdateListingRequest{Price: decPtr("99"), DailyRate: decPtr("3")})

		require.NoError(t, err)
		assert.Equal(t, []string{"price"}, res.UpdatedFields)
		assert.Nil(t, res.Listing.DailyRate)
	})

	t.Run("no change skips save", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		res, err := svc.Update(ctx, lister, listing.ID, UpdateListingRequest{SwapPreference: strPtr("x")})

		require.NoError(t, err)
		assert.Empty(t, res.UpdatedFields)
		f.listings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("not lister", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Update(ctx, uuid.New(), listing.ID, UpdateListingRequest{Price: decPtr("1")})

		assert.True(t, errors.Is(err, marketplace.ErrNotLister))
	})

	t.Run("inactive", func(t *testing.T) {
		f := newFixture()
		svc := newListingService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		require.NoError(t, listing.Deactivate(lister))
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Update(ctx, lister, listing.ID, UpdateListingRequest{Price: decPtr("1")})

		assert.True(t, errors.Is(err, marketplace.ErrInactive))
	})
}

func TestListingService_Deactivate(t *testing.T) {
	ctx := context.Background()
	lister := uuid.New()
	f := newFixture()
	svc := newListingService(f)
	listing := newStoredListing(t, lister, marketplace.ListingKindRental)
	f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
	f.listings.On("Save", mock.Anything, listing).Return(nil)

	require.NoError(t, svc.Deactivate(ctx, lister, listing.ID))
	assert.False(t, listing.Active)
	assert.Equal(t, marketplace.DeactivationWithdrawn, listing.Deactivation)

	assert.True(t, errors.Is(svc.Deactivate(ctx, lister, listing.ID), marketplace.ErrAlreadyInactive))
	assert.True(t, errors.Is(svc.Deactivate(ctx, uuid.New(), listing.ID), marketplace.ErrNotLister))
}

func TestListingService_ListActive(t *testing.T) {
	f := newFixture()
	svc := newListingService(f)
	lister := uuid.New()
	listing := newStoredListing(t, lister, marketplace.ListingKindSwap)
	item := newItem(t, lister)
	listing.ItemID = item.ID
	user := &identity.User{BaseEntity: shared.BaseEntity{ID: lister}, Username: "alice"}

	f.listings.On("FindActive", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["kind"] == "SWAP" && filter.PageSize == shared.MaxPageSize && filter.Page == 1
	})).Return([]marketplace.Listing{*listing}, int64(1), nil)
	f.items.On("FindByIDs", mock.Anything, []uuid.UUID{item.ID}).Return(map[uuid.UUID]*catalog.Item{item.ID: item}, nil)
	f.users.On("FindByIDs", mock.Anything, []uuid.UUID{lister}).Return(map[uuid.UUID]*identity.User{lister: user}, nil)

	page, err := svc.ListActive(context.Background(), ListListingsRequest{Kind: "swap", PageSize: 500})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].ListerUsername)
	assert.Equal(t, "Camping tent", page.Items[0].Item.Title)
	assert.Equal(t, "a kayak", *page.Items[0].SwapPreference)

	_, err = svc.ListActive(context.Background(), ListListingsRequest{Kind: "barter"})
	assert.True(t, errors.Is(err, marketplace.ErrInvalidKind))
}
