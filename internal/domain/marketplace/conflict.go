package marketplace

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// CalendarExcludedStatuses are the rental statuses that never occupy a period
var CalendarExcludedStatuses = []TransactionStatus{TransactionStatusCancelled}

// OverlapQuery is the persistence lookup used by the conflict check
type OverlapQuery interface {
	// QueryOverlapping returns transactions of kind on listingID whose period
	// overlaps r, excluding the given statuses
	QueryOverlapping(ctx context.Context, listingID uuid.UUID, kind TransactionKind, excluded []TransactionStatus, r DateRange) ([]Transaction, error)
}

// FindConflict returns the first rental on listingID among existing whose
// period overlaps candidate while it still occupies the calendar.
// Transactions of other listings, sales and cancelled rentals are ignored.
// When several collide, the one with the earliest start wins, then the earliest
// creation time, then the lowest id, so the answer is stable for a fixed snapshot.
func FindConflict(listingID uuid.UUID, existing []Transaction, candidate DateRange) (*Transaction, bool) {
	conflicts := make([]*Transaction, 0, 1)
	for i := range existing {
		t := &existing[i]
		if t.ListingID != listingID || !t.BlocksCalendar() {
			continue
		}
		if t.Period.Overlaps(candidate) {
			conflicts = append(conflicts, t)
		}
	}
	if len(conflicts) == 0 {
		return nil, false
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if !a.Period.Start.Equal(b.Period.Start) {
			return a.Period.Start.Before(b.Period.Start)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return conflicts[0], true
}

// CheckRentalAvailability loads the bookings overlapping candidate and fails
// with a DateConflictError describing the first collision.
// It must run inside the unit of work that inserts the new rental.
func CheckRentalAvailability(ctx context.Context, q OverlapQuery, listingID uuid.UUID, candidate DateRange) error {
	existing, err := q.QueryOverlapping(ctx, listingID, TransactionKindRental, CalendarExcludedStatuses, candidate)
	if err != nil {
		return err
	}
	if conflict, found := FindConflict(listingID, existing, candidate); found {
		return NewDateConflictError(conflict)
	}
	return nil
}
