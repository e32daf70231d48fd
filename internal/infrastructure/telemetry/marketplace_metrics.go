package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of marketplace metrics
const MeterName = "swapmarket/marketplace"

// MarketplaceMetrics holds the marketplace business counters.
// It serves both the event-driven counters and the coordinator observer.
type MarketplaceMetrics struct {
	listingsCreated     *Counter
	listingsDeactivated *Counter
	transactions        *Counter
	offers              *Counter
	retries             *Counter
	dateConflicts       *Counter
	failures            *Counter
	lockWait            *Histogram
}

// NewMarketplaceMetrics registers the marketplace instruments on meter
func NewMarketplaceMetrics(meter metric.Meter) (*MarketplaceMetrics, error) {
	m := &MarketplaceMetrics{}
	specs := []struct {
		target      **Counter
		name        string
		description string
	}{
		{&m.listingsCreated, "market_listings_created_total", "Listings created"},
		{&m.listingsDeactivated, "market_listings_deactivated_total", "Listings deactivated"},
		{&m.transactions, "market_transactions_total", "Sale and rental transactions by status"},
		{&m.offers, "market_offers_total", "Swap offers by status"},
		{&m.retries, "market_coordinator_retries_total", "Coordinated operations retried after a concurrency conflict"},
		{&m.dateConflicts, "market_date_conflicts_total", "Rental requests rejected for overlapping dates"},
		{&m.failures, "market_transaction_failures_total", "Coordinated operations that failed to commit"},
	}
	for _, s := range specs {
		c, err := NewCounter(meter, s.name, s.description, "{event}")
		if err != nil {
			return nil, fmt.Errorf("marketplace metrics: %w", err)
		}
		*s.target = c
	}
	h, err := NewHistogram(meter, "market_listing_lock_wait_seconds",
		"Time spent waiting for a listing lock", "s", LockWaitBuckets)
	if err != nil {
		return nil, fmt.Errorf("marketplace metrics: %w", err)
	}
	m.lockWait = h
	return m, nil
}

// ListingCreated increments market_listings_created_total{kind}
func (m *MarketplaceMetrics) ListingCreated(ctx context.Context, kind string) {
	m.listingsCreated.Inc(ctx, AttrKind.String(kind))
}

// ListingDeactivated increments market_listings_deactivated_total{kind,reason}
func (m *MarketplaceMetrics) ListingDeactivated(ctx context.Context, kind, reason string) {
	m.listingsDeactivated.Inc(ctx, AttrKind.String(kind), AttrReason.String(reason))
}

// TransactionRecorded increments market_transactions_total{kind,status}
func (m *MarketplaceMetrics) TransactionRecorded(ctx context.Context, kind, status string) {
	m.transactions.Inc(ctx, AttrKind.String(kind), AttrStatus.String(status))
}

// OfferRecorded increments market_offers_total{status}
func (m *MarketplaceMetrics) OfferRecorded(ctx context.Context, status string) {
	m.offers.Inc(ctx, AttrStatus.String(status))
}

// RetryAttempted increments market_coordinator_retries_total
func (m *MarketplaceMetrics) RetryAttempted(ctx context.Context, attempt int) {
	m.retries.Inc(ctx, AttrAttempt.Int(attempt))
}

// DateConflict increments market_date_conflicts_total
func (m *MarketplaceMetrics) DateConflict(ctx context.Context) {
	m.dateConflicts.Inc(ctx)
}

// TransactionFailed increments market_transaction_failures_total
func (m *MarketplaceMetrics) TransactionFailed(ctx context.Context) {
	m.failures.Inc(ctx)
}

// LockWaited records market_listing_lock_wait_seconds{outcome}
func (m *MarketplaceMetrics) LockWaited(ctx context.Context, d time.Duration, acquired bool) {
	outcome := "acquired"
	if !acquired {
		outcome = "failed"
	}
	m.lockWait.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
