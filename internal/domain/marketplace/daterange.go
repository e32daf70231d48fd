package marketplace

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for rental dates
const DateLayout = "2006-01-02"

// DateRange is a half-open interval of calendar days [Start, End).
// Both bounds are UTC midnights.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateRange.WithMessage(fmt.Sprintf("Date %q must use the YYYY-MM-DD format", s))
	}
	return d.UTC(), nil
}

// ParseDateRange parses the two bounds and validates the interval
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// NewDateRange builds a range from two instants, truncated to their UTC day.
// Zero-length and inverted ranges are rejected.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if !r.End.After(r.Start) {
		return DateRange{}, ErrInvalidDateRange.WithMessage("End date must be after start date")
	}
	return r, nil
}

// Days returns the number of rented days
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether the two intervals share at least one day.
// Adjacent ranges, where one ends exactly when the other starts, do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// StartsBefore reports whether the range starts on a day earlier than day
func (r DateRange) StartsBefore(day time.Time) bool {
	return r.Start.Before(truncateDay(day))
}

// StartString returns the start bound in wire format
func (r DateRange) StartString() string {
	return r.Start.Format(DateLayout)
}

// EndString returns the end bound in wire format
func (r DateRange) EndString() string {
	return r.End.Format(DateLayout)
}

// String renders the range as start..end
func (r DateRange) String() string {
	return r.StartString() + ".." + r.EndString()
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
