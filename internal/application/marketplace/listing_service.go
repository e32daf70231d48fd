package marketplace

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/identity"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ListingService handles the listing lifecycle
type ListingService struct {
	coordinator *Coordinator
	listingRepo marketplace.ListingRepository
	itemRepo    catalog.ItemRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewListingService creates a new ListingService
func NewListingService(
	coordinator *Coordinator,
	listingRepo marketplace.ListingRepository,
	itemRepo catalog.ItemRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		coordinator: coordinator,
		listingRepo: listingRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Create lists an item owned by the actor.
// Failures are reported in the order NotOwner, AlreadyListed, InvalidPayload.
func (s *ListingService) Create(ctx context.Context, actorID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	kind, err := marketplace.ParseListingKind(req.Kind)
	if err != nil {
		return nil, err
	}

	var listing *marketplace.Listing
	err = s.coordinator.Run(ctx, func(ctx context.Context, u *Unit) error {
		// Locked so a concurrent item deletion cannot slip past the listed check
		item, err := u.Items().FindByIDForUpdate(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if !item.OwnedBy(actorID) {
			return marketplace.ErrNotOwner
		}
		listed, err := u.Listings().ExistsActiveForItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if listed {
			return marketplace.ErrAlreadyListed
		}

		listing, err = marketplace.NewListing(item, actorID, kind, marketplace.ListingPayload{
			Price:          req.Price,
			DailyRate:      req.DailyRate,
			SwapPreference: req.SwapPreference,
		})
		if err != nil {
			return err
		}
		if err := u.Listings().Create(ctx, listing); err != nil {
			return err
		}
		u.Collect(listing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("item_id", listing.ItemID.String()),
		zap.String("kind", string(listing.Kind)))

	resp := ToListingResponse(listing)
	return &resp, nil
}

// Update changes the terms of an active listing
func (s *ListingService) Update(ctx context.Context, actorID, listingID uuid.UUID, req UpdateListingRequest) (*UpdateListingResult, error) {
	var (
		listing *marketplace.Listing
		changed []string
	)
	err := s.coordinator.OnListing(ctx, listingID, func(ctx context.Context, u *Unit) error {
		var err error
		listing, err = u.Listings().FindByIDForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		changed, err = listing.Update(actorID, marketplace.ListingPayload{
			Price:          req.Price,
			DailyRate:      req.DailyRate,
			SwapPreference: req.SwapPreference,
		})
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		if err := u.Listings().Save(ctx, listing); err != nil {
			return err
		}
		u.Collect(listing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToListingResponse(listing)
	return &UpdateListingResult{Listing: &resp, UpdatedFields: changed}, nil
}

// Deactivate withdraws a listing
func (s *ListingService) Deactivate(ctx context.Context, actorID, listingID uuid.UUID) error {
	err := s.coordinator.OnListing(ctx, listingID, func(ctx context.Context, u *Unit) error {
		listing, err := u.Listings().FindByIDForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if err := listing.Deactivate(actorID); err != nil {
			return err
		}
		if err := u.Listings().Save(ctx, listing); err != nil {
			return err
		}
		u.Collect(listing)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Listing deactivated", zap.String("listing_id", listingID.String()))
	return nil
}

// GetByID returns a listing with its item and lister
func (s *ListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, []marketplace.Listing{*listing})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListActive returns one page of active listings
func (s *ListingService) ListActive(ctx context.Context, req ListListingsRequest) (*shared.Paginated[ListingResponse], error) {
	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize()
	if req.Kind != "" {
		kind, err := marketplace.ParseListingKind(req.Kind)
		if err != nil {
			return nil, err
		}
		filter.Filters["kind"] = string(kind)
	}

	listings, total, err := s.listingRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, listings)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListMine returns every listing created by the actor, including inactive ones
func (s *ListingService) ListMine(ctx context.Context, actorID uuid.UUID) ([]ListingResponse, error) {
	listings, err := s.listingRepo.FindByLister(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, listings)
}

// enrich joins listings with their items and lister usernames
func (s *ListingService) enrich(ctx context.Context, listings []marketplace.Listing) ([]ListingResponse, error) {
	views := make([]ListingResponse, 0, len(listings))
	if len(listings) == 0 {
		return views, nil
	}

	itemIDs := make([]uuid.UUID, 0, len(listings))
	userIDs := make([]uuid.UUID, 0, len(listings))
	for i := range listings {
		itemIDs = append(itemIDs, listings[i].ItemID)
		userIDs = append(userIDs, listings[i].ListerID)
	}

	items, err := s.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	for i := range listings {
		view := ToListingResponse(&listings[i])
		view.Item = ToItemSummary(items[listings[i].ItemID])
		if u, ok := users[listings[i].ListerID]; ok {
			view.ListerUsername = u.Username
		}
		views = append(views, view)
	}
	return views, nil
}
