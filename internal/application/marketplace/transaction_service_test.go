package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func newItem(t *testing.T, owner uuid.UUID) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(owner, catalog.ItemDetails{Title: "Camping tent", Category: "outdoor"})
	require.NoError(t, err)
	return item
}

// newStoredListing builds a listing as it would be loaded from storage
func newStoredListing(t *testing.T, lister uuid.UUID, kind marketplace.ListingKind) *marketplace.Listing {
	t.Helper()
	payload := marketplace.ListingPayload{
		Price:          decPtr("120.00"),
		DailyRate:      decPtr("15.50"),
		SwapPreference: strPtr("a kayak"),
	}
	l, err := marketplace.NewListing(newItem(t, lister), lister, kind, payload)
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func newRentalService(f *fixture) *TransactionService {
	svc := NewTransactionService(f.coordinator, f.listings, f.transactions, nil)
	svc.SetClock(func() time.Time { return time.Date(2023, 12, 15, 9, 30, 0, 0, time.UTC) })
	return svc
}

func TestTransactionService_Buy(t *testing.T) {
	ctx := context.Background()
	lister, buyer := uuid.New(), uuid.New()

	t.Run("completes sale and deactivates listing", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)

		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.listings.On("Save", mock.Anything, listing).Return(nil)
		f.transactions.On("Create", mock.Anything, mock.AnythingOfType("*marketplace.Transaction")).Return(nil)

		resp, err := svc.Buy(ctx, buyer, BuyRequest{ListingID: listing.ID})

		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", resp.Status)
		assert.Equal(t, "SALE", resp.Kind)
		assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("120")))
		assert.False(t, listing.Active)
		assert.Equal(t, marketplace.DeactivationSold, listing.Deactivation)
		assert.ElementsMatch(t, []string{marketplace.EventTypeSaleCompleted, marketplace.EventTypeListingDeactivated}, f.publisher.types())
		assert.Equal(t, []uuid.UUID{listing.ID}, f.locker.acquired)
		f.listings.AssertExpectations(t)
		f.transactions.AssertExpectations(t)
	})

	t.Run("second buy fails with gone", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		require.NoError(t, listing.MarkSold(uuid.New()))

		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Buy(ctx, buyer, BuyRequest{ListingID: listing.ID})

		assert.True(t, errors.Is(err, marketplace.ErrGone))
		f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lister cannot buy own listing", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Buy(ctx, lister, BuyRequest{ListingID: listing.ID})

		assert.True(t, errors.Is(err, marketplace.ErrSelfTransaction))
		assert.True(t, listing.Active)
	})

	t.Run("wrong kind", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindRental)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Buy(ctx, buyer, BuyRequest{ListingID: listing.ID})

		assert.True(t, errors.Is(err, marketplace.ErrWrongKind))
	})

	t.Run("missing listing", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		id := uuid.New()
		f.listings.On("FindByIDForUpdate", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Buy(ctx, buyer, BuyRequest{ListingID: id})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("failed insert leaves no events", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.listings.On("Save", mock.Anything, listing).Return(nil)
		f.transactions.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := svc.Buy(ctx, buyer, BuyRequest{ListingID: listing.ID})

		assert.True(t, errors.Is(err, shared.ErrTransactionFailed))
		assert.Empty(t, f.publisher.types())
	})
}

func TestTransactionService_Rent_ValidatesDatesBeforeLookup(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"malformed start", "2024/01/01", "2024-01-05"},
		{"malformed end", "2024-01-01", "tomorrow"},
		{"zero length", "2024-01-05", "2024-01-05"},
		{"inverted", "2024-01-05", "2024-01-01"},
		{"in the past", "2023-12-14", "2023-12-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newRentalService(f)

			_, err := svc.Rent(context.Background(), uuid.New(), RentRequest{ListingID: uuid.New(), StartDate: tt.start, EndDate: tt.end})

			assert.True(t, errors.Is(err, marketplace.ErrInvalidDateRange))
			assert.Equal(t, shared.CategoryValidation, shared.CategoryOf(err))
			f.listings.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
			assert.Empty(t, f.locker.acquired)
		})
	}
}

func TestTransactionService_Rent(t *testing.T) {
	ctx := context.Background()
	lister, renter := uuid.New(), uuid.New()

	existingRental := func(listingID uuid.UUID, start, end string) marketplace.Transaction {
		period, err := marketplace.ParseDateRange(start, end)
		require.NoError(t, err)
		return marketplace.Transaction{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			ListingID:         listingID,
			BuyerID:           uuid.New(),
			Kind:              marketplace.TransactionKindRental,
			Status:            marketplace.TransactionStatusPending,
			Period:            &period,
		}
	}

	t.Run("today is a legal start", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindRental)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.transactions.On("QueryOverlapping", mock.Anything, listing.ID, marketplace.TransactionKindRental, mock.Anything, mock.Anything).
			Return([]marketplace.Transaction{}, nil)
		f.transactions.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Rent(ctx, renter, RentRequest{ListingID: listing.ID, StartDate: "2023-12-15", EndDate: "2023-12-18"})

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "2023-12-15", *resp.StartDate)
		assert.Equal(t, "2023-12-18", *resp.EndDate)
		assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("46.50")))
		assert.True(t, listing.Active)
		assert.Equal(t, []string{marketplace.EventTypeRentalRequested}, f.publisher.types())
	})

	t.Run("adjacent booking succeeds", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindRental)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.transactions.On("QueryOverlapping", mock.Anything, listing.ID, marketplace.TransactionKindRental, mock.Anything, mock.Anything).
			Return([]marketplace.Transaction{existingRental(listing.ID, "2024-01-01", "2024-01-05")}, nil)
		f.transactions.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Rent(ctx, renter, RentRequest{ListingID: listing.ID, StartDate: "2024-01-05", EndDate: "2024-01-10"})

		require.NoError(t, err)
	})

	t.Run("overlap reports the colliding interval", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindRental)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.transactions.On("QueryOverlapping", mock.Anything, listing.ID, marketplace.TransactionKindRental, mock.Anything, mock.Anything).
			Return([]marketplace.Transaction{existingRental(listing.ID, "2024-01-01", "2024-01-10")}, nil)

		_, err := svc.Rent(ctx, renter, RentRequest{ListingID: listing.ID, StartDate: "2024-01-05", EndDate: "2024-01-08"})

		var conflict *marketplace.DateConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "2024-01-01..2024-01-10", conflict.Conflicting.String())
		assert.True(t, errors.Is(err, marketplace.ErrDateConflict))
		f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lister cannot rent own listing", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindRental)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Rent(ctx, lister, RentRequest{ListingID: listing.ID, StartDate: "2024-01-05", EndDate: "2024-01-08"})

		assert.True(t, errors.Is(err, marketplace.ErrSelfTransaction))
	})

	t.Run("sale listing cannot be rented", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err := svc.Rent(ctx, renter, RentRequest{ListingID: listing.ID, StartDate: "2024-01-05", EndDate: "2024-01-08"})

		assert.True(t, errors.Is(err, marketplace.ErrWrongKind))
	})
}

func TestTransactionService_RespondToRental(t *testing.T) {
	ctx := context.Background()
	lister, renter := uuid.New(), uuid.New()

	setup := func(t *testing.T) (*fixture, *TransactionService, *marketplace.Transaction) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindRental)
		period, err := marketplace.ParseDateRange("2024-02-01", "2024-02-03")
		require.NoError(t, err)
		txn, err := marketplace.NewRentalTransaction(listing, renter, period)
		require.NoError(t, err)
		txn.ClearDomainEvents()

		f.transactions.On("FindByID", mock.Anything, txn.ID).Return(txn, nil)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)
		f.transactions.On("Save", mock.Anything, txn).Return(nil)
		return f, svc, txn
	}

	t.Run("accept then respond again", func(t *testing.T) {
		f, svc, txn := setup(t)

		resp, err := svc.RespondToRental(ctx, lister, txn.ID, RespondRequest{Action: "accept"})
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", resp.Status)
		assert.NotNil(t, resp.RespondedAt)
		assert.Equal(t, []string{marketplace.EventTypeRentalResponded}, f.publisher.types())

		_, err = svc.RespondToRental(ctx, lister, txn.ID, RespondRequest{Action: "REJECT"})
		assert.True(t, errors.Is(err, marketplace.ErrAlreadyResponded))
	})

	t.Run("reject cancels", func(t *testing.T) {
		_, svc, txn := setup(t)

		resp, err := svc.RespondToRental(ctx, lister, txn.ID, RespondRequest{Action: "REJECT"})

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
	})

	t.Run("only the lister may respond", func(t *testing.T) {
		_, svc, txn := setup(t)

		_, err := svc.RespondToRental(ctx, renter, txn.ID, RespondRequest{Action: "ACCEPT"})

		assert.True(t, errors.Is(err, marketplace.ErrNotLister))
		assert.True(t, txn.IsPending())
	})

	t.Run("sale is already responded", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		listing := newStoredListing(t, lister, marketplace.ListingKindSale)
		sale, err := marketplace.NewSaleTransaction(listing, renter)
		require.NoError(t, err)
		sale.ClearDomainEvents()
		f.transactions.On("FindByID", mock.Anything, sale.ID).Return(sale, nil)
		f.listings.On("FindByIDForUpdate", mock.Anything, listing.ID).Return(listing, nil)

		_, err = svc.RespondToRental(ctx, lister, sale.ID, RespondRequest{Action: "ACCEPT"})

		assert.True(t, errors.Is(err, marketplace.ErrAlreadyResponded))
		assert.Equal(t, marketplace.TransactionStatusCompleted, sale.Status)
		f.transactions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("invalid action", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)

		_, err := svc.RespondToRental(ctx, lister, uuid.New(), RespondRequest{Action: "maybe"})

		assert.True(t, errors.Is(err, marketplace.ErrInvalidAction))
		f.transactions.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing transaction", func(t *testing.T) {
		f := newFixture()
		svc := newRentalService(f)
		id := uuid.New()
		f.transactions.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := svc.RespondToRental(ctx, lister, id, RespondRequest{Action: "ACCEPT"})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestTransactionService_ListForListing(t *testing.T) {
	f := newFixture()
	svc := newRentalService(f)
	lister := uuid.New()
	listing := newStoredListing(t, lister, marketplace.ListingKindRental)
	f.listings.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)
	f.transactions.On("FindByListing", mock.Anything, listing.ID).Return([]marketplace.Transaction{}, nil)

	out, err := svc.ListForListing(context.Background(), lister, listing.ID)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = svc.ListForListing(context.Background(), uuid.New(), listing.ID)
	assert.True(t, errors.Is(err, marketplace.ErrNotLister))
}
