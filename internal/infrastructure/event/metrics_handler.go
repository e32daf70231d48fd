package event

import (
	"context"

	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// MarketplaceRecorder records marketplace business counters
type MarketplaceRecorder interface {
	ListingCreated(ctx context.Context, kind string)
	ListingDeactivated(ctx context.Context, kind, reason string)
	TransactionRecorded(ctx context.Context, kind, status string)
	OfferRecorded(ctx context.Context, status string)
}

// MetricsEventHandler turns marketplace events into counter increments
type MetricsEventHandler struct {
	recorder MarketplaceRecorder
}

// NewMetricsEventHandler creates a new MetricsEventHandler
func NewMetricsEventHandler(recorder MarketplaceRecorder) *MetricsEventHandler {
	return &MetricsEventHandler{recorder: recorder}
}

// EventTypes implements shared.EventHandler
func (h *MetricsEventHandler) EventTypes() []string {
	return marketplace.AllEventTypes
}

// Handle implements shared.EventHandler
func (h *MetricsEventHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *marketplace.ListingCreatedEvent:
		h.recorder.ListingCreated(ctx, e.Kind.String())
	case *marketplace.ListingDeactivatedEvent:
		h.recorder.ListingDeactivated(ctx, e.Kind.String(), string(e.Reason))
	case *marketplace.SaleCompletedEvent:
		h.recorder.TransactionRecorded(ctx,
			marketplace.TransactionKindSale.String(), marketplace.TransactionStatusCompleted.String())
	case *marketplace.RentalRequestedEvent:
		h.recorder.TransactionRecorded(ctx,
			marketplace.TransactionKindRental.String(), marketplace.TransactionStatusPending.String())
	case *marketplace.RentalRespondedEvent:
		h.recorder.TransactionRecorded(ctx, marketplace.TransactionKindRental.String(), e.Status.String())
	case *marketplace.SwapOfferMadeEvent:
		h.recorder.OfferRecorded(ctx, marketplace.OfferStatusPending.String())
	case *marketplace.SwapOfferRespondedEvent:
		h.recorder.OfferRecorded(ctx, e.Status.String())
	}
	return nil
}

var _ shared.EventHandler = (*MetricsEventHandler)(nil)
