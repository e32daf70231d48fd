package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"go.uber.org/zap"
)

// TransactionService handles sales and rentals
type TransactionService struct {
	coordinator     *Coordinator
	listingRepo     marketplace.ListingRepository
	transactionRepo marketplace.TransactionRepository
	logger          *zap.Logger
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	coordinator *Coordinator,
	listingRepo marketplace.ListingRepository,
	transactionRepo marketplace.TransactionRepository,
	logger *zap.Logger,
) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		coordinator:     coordinator,
		listingRepo:     listingRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// SetClock replaces the clock used to decide whether a rental starts in the past
func (s *TransactionService) SetClock(now func() time.Time) {
	s.now = now
}

// Buy purchases a sale listing. The listing is deactivated and a completed
// transaction is inserted in the same commit.
func (s *TransactionService) Buy(ctx context.Context, actorID uuid.UUID, req BuyRequest) (*TransactionResponse, error) {
	var txn *marketplace.Transaction
	err := s.coordinator.OnListing(ctx, req.ListingID, func(ctx context.Context, u *Unit) error {
		listing, err := u.Listings().FindByIDForUpdate(ctx, req.ListingID)
		if err != nil {
			return err
		}
		txn, err = marketplace.NewSaleTransaction(listing, actorID)
		if err != nil {
			return err
		}
		if err := listing.MarkSold(actorID); err != nil {
			return err
		}
		if err := u.Listings().Save(ctx, listing); err != nil {
			return err
		}
		if err := u.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		u.Collect(txn, listing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale completed",
		zap.String("listing_id", req.ListingID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("total_price", txn.TotalPrice.StringFixed(2)))

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// Rent books a rental listing for [start, end).
// Dates are validated before any lookup; overlap is checked under the listing lock.
func (s *TransactionService) Rent(ctx context.Context, actorID uuid.UUID, req RentRequest) (*TransactionResponse, error) {
	period, err := marketplace.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if period.StartsBefore(s.now()) {
		return nil, marketplace.ErrInvalidDateRange.WithMessage("Start date cannot be in the past")
	}

	var txn *marketplace.Transaction
	err = s.coordinator.OnListing(ctx, req.ListingID, func(ctx context.Context, u *Unit) error {
		listing, err := u.Listings().FindByIDForUpdate(ctx, req.ListingID)
		if err != nil {
			return err
		}
		txn, err = marketplace.NewRentalTransaction(listing, actorID, period)
		if err != nil {
			return err
		}
		if err := marketplace.CheckRentalAvailability(ctx, u.Transactions(), listing.ID, period); err != nil {
			return err
		}
		if err := u.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		u.Collect(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rental requested",
		zap.String("listing_id", req.ListingID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("period", period.String()))

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// RespondToRental records the lister's answer to a pending rental.
// Overlap is not re-checked: bookings were already pairwise disjoint at creation.
func (s *TransactionService) RespondToRental(ctx context.Context, actorID, transactionID uuid.UUID, req RespondRequest) (*TransactionResponse, error) {
	action, err := marketplace.ParseResponseAction(req.Action)
	if err != nil {
		return nil, err
	}

	current, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var txn *marketplace.Transaction
	err = s.coordinator.OnListing(ctx, current.ListingID, func(ctx context.Context, u *Unit) error {
		listing, err := u.Listings().FindByIDForUpdate(ctx, current.ListingID)
		if err != nil {
			return err
		}
		if err := listing.EnsureLister(actorID); err != nil {
			return err
		}
		txn, err = u.Transactions().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := txn.Respond(actorID, action); err != nil {
			return err
		}
		if err := u.Transactions().Save(ctx, txn); err != nil {
			return err
		}
		u.Collect(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rental responded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("status", string(txn.Status)))

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// ListMine returns the transactions the actor created as buyer or renter
func (s *TransactionService) ListMine(ctx context.Context, actorID uuid.UUID) ([]TransactionResponse, error) {
	txns, err := s.transactionRepo.FindByBuyer(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(txns), nil
}

// ListForListing returns the transactions recorded against a listing; lister only
func (s *TransactionService) ListForListing(ctx context.Context, actorID, listingID uuid.UUID) ([]TransactionResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureLister(actorID); err != nil {
		return nil, err
	}
	txns, err := s.transactionRepo.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(txns), nil
}

func toTransactionResponses(txns []marketplace.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, ToTransactionResponse(&txns[i]))
	}
	return out
}
