package marketplace

import (
	"context"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"go.uber.org/zap"
)

// OfferService handles swap offers
type OfferService struct {
	coordinator *Coordinator
	listingRepo marketplace.ListingRepository
	offerRepo   marketplace.SwapOfferRepository
	itemRepo    catalog.ItemRepository
	logger      *zap.Logger
}

// NewOfferService creates a new OfferService
func NewOfferService(
	coordinator *Coordinator,
	listingRepo marketplace.ListingRepository,
	offerRepo marketplace.SwapOfferRepository,
	itemRepo catalog.ItemRepository,
	logger *zap.Logger,
) *OfferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferService{
		coordinator: coordinator,
		listingRepo: listingRepo,
		offerRepo:   offerRepo,
		itemRepo:    itemRepo,
		logger:      logger,
	}
}

// MakeOffer proposes one of the actor's items against a swap listing
func (s *OfferService) MakeOffer(ctx context.Context, actorID uuid.UUID, req MakeOfferRequest) (*OfferResponse, error) {
	var offer *marketplace.SwapOffer
	err := s.coordinator.OnListing(ctx, req.ListingID, func(ctx context.Context, u *Unit) error {
		listing, err := u.Listings().FindByIDForUpdate(ctx, req.ListingID)
		if err != nil {
			return err
		}
		item, err := u.Items().FindByID(ctx, req.OfferedItemID)
		if err != nil {
			return err
		}
		offer, err = marketplace.NewSwapOffer(listing, item, actorID, req.Message)
		if err != nil {
			return err
		}
		if err := u.Offers().Create(ctx, offer); err != nil {
			return err
		}
		u.Collect(offer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Swap offer made",
		zap.String("listing_id", req.ListingID.String()),
		zap.String("offer_id", offer.ID.String()))

	resp := ToOfferResponse(offer, true)
	return &resp, nil
}

// RespondToOffer records the lister's answer. Accepting deactivates the
// listing in the same commit; other pending offers are left untouched.
func (s *OfferService) RespondToOffer(ctx context.Context, actorID, offerID uuid.UUID, req RespondRequest) (*OfferResponse, error) {
	action, err := marketplace.ParseResponseAction(req.Action)
	if err != nil {
		return nil, err
	}

	current, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	var (
		offer   *marketplace.SwapOffer
		listing *marketplace.Listing
	)
	err = s.coordinator.OnListing(ctx, current.ListingID, func(ctx context.Context, u *Unit) error {
		var err error
		listing, err = u.Listings().FindByIDForUpdate(ctx, current.ListingID)
		if err != nil {
			return err
		}
		if err := listing.EnsureLister(actorID); err != nil {
			return err
		}
		offer, err = u.Offers().FindByID(ctx, offerID)
		if err != nil {
			return err
		}
		if err := offer.Respond(actorID, action); err != nil {
			return err
		}
		if action == marketplace.ResponseAccept {
			if err := listing.MarkSwapped(actorID); err != nil {
				return err
			}
			if err := u.Listings().Save(ctx, listing); err != nil {
				return err
			}
		}
		if err := u.Offers().Save(ctx, offer); err != nil {
			return err
		}
		u.Collect(offer, listing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Swap offer responded",
		zap.String("offer_id", offer.ID.String()),
		zap.String("status", string(offer.Status)))

	resp := ToOfferResponse(offer, listing.Active)
	return &resp, nil
}

// ListForListing returns the offers against a listing; lister only
func (s *OfferService) ListForListing(ctx context.Context, actorID, listingID uuid.UUID) ([]OfferResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureLister(actorID); err != nil {
		return nil, err
	}
	offers, err := s.offerRepo.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, offers, map[uuid.UUID]*marketplace.Listing{listing.ID: listing})
}

// ListMine returns the offers the actor made
func (s *OfferService) ListMine(ctx context.Context, actorID uuid.UUID) ([]OfferResponse, error) {
	offers, err := s.offerRepo.FindByOfferer(ctx, actorID)
	if err != nil {
		return nil, err
	}
	listingIDs := make([]uuid.UUID, 0, len(offers))
	for i := range offers {
		listingIDs = append(listingIDs, offers[i].ListingID)
	}
	listings, err := s.listingRepo.FindByIDs(ctx, listingIDs)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, offers, listings)
}

// toResponses resolves offered items and computes actionability against the listing state
func (s *OfferService) toResponses(ctx context.Context, offers []marketplace.SwapOffer, listings map[uuid.UUID]*marketplace.Listing) ([]OfferResponse, error) {
	out := make([]OfferResponse, 0, len(offers))
	if len(offers) == 0 {
		return out, nil
	}
	itemIDs := make([]uuid.UUID, 0, len(offers))
	for i := range offers {
		itemIDs = append(itemIDs, offers[i].OfferedItemID)
	}
	items, err := s.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	for i := range offers {
		active := false
		if l, ok := listings[offers[i].ListingID]; ok {
			active = l.Active
		}
		resp := ToOfferResponse(&offers[i], active)
		resp.OfferedItem = ToItemSummary(items[offers[i].OfferedItemID])
		out = append(out, resp)
	}
	return out, nil
}
