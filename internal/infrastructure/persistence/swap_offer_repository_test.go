package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

func TestGormSwapOfferRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSwapOfferRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "lister")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	listing := createListing(t, db, createItem(t, db, owner.ID, "Bike"), marketplace.ListingKindSwap)

	offer := func(offererID uuid.UUID, title string) *marketplace.SwapOffer {
		o, err := marketplace.NewSwapOffer(listing, createItem(t, db, offererID, title), offererID, "  trade?  ")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, o))
		return o
	}
	fromBob := offer(bob.ID, "Kayak")
	fromCarol := offer(carol.ID, "Canoe")

	found, err := repo.FindByID(ctx, fromBob.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.OfferStatusPending, found.Status)
	assert.Equal(t, "trade?", found.Message)
	assert.Equal(t, fromBob.OfferedItemID, found.OfferedItemID)
	assert.Nil(t, found.RespondedAt)

	forListing, err := repo.FindByListing(ctx, listing.ID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(forListing))
	for _, o := range forListing {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{fromBob.ID, fromCarol.ID}, ids)

	mine, err := repo.FindByOfferer(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, fromCarol.ID, mine[0].ID)

	require.NoError(t, found.Respond(owner.ID, marketplace.ResponseReject))
	require.NoError(t, repo.Save(ctx, found))
	assert.Equal(t, 2, found.Version)

	reloaded, err := repo.FindByID(ctx, fromBob.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.OfferStatusRejected, reloaded.Status)
	assert.NotNil(t, reloaded.RespondedAt)

	// The copy read before the response is now stale
	stale := *fromBob
	require.NoError(t, stale.Respond(owner.ID, marketplace.ResponseAccept))
	assert.ErrorIs(t, repo.Save(ctx, &stale), shared.ErrConcurrencyConflict)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
