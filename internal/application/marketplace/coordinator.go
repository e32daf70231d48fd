package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ListingLocker serializes work on a single listing.
// Release must be called exactly once after a successful Acquire.
type ListingLocker interface {
	Acquire(ctx context.Context, listingID uuid.UUID) (release func(), err error)
}

// CoordinatorObserver receives coordinator outcomes for metrics
type CoordinatorObserver interface {
	RetryAttempted(ctx context.Context, attempt int)
	DateConflict(ctx context.Context)
	TransactionFailed(ctx context.Context)
	LockWaited(ctx context.Context, d time.Duration, acquired bool)
}

type noopObserver struct{}

func (noopObserver) RetryAttempted(context.Context, int)             {}
func (noopObserver) DateConflict(context.Context)                    {}
func (noopObserver) TransactionFailed(context.Context)               {}
func (noopObserver) LockWaited(context.Context, time.Duration, bool) {}

// CoordinatorConfig contains retry settings for the coordinator
type CoordinatorConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// DefaultCoordinatorConfig returns default configuration
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		MaxAttempts:  3,
		RetryBackoff: 20 * time.Millisecond,
	}
}

// EventSource is an aggregate carrying pending domain events
type EventSource interface {
	PullDomainEvents() []shared.DomainEvent
}

// Unit is the transactional context handed to coordinated work
type Unit struct {
	TransactionalRepositories
	events []shared.DomainEvent
}

// Collect drains the pending events of the given aggregates.
// They are published only if the unit commits.
func (u *Unit) Collect(sources ...EventSource) {
	for _, s := range sources {
		u.events = append(u.events, s.PullDomainEvents()...)
	}
}

// Coordinator runs multi-entity operations as one atomic unit and
// serializes conflicting attempts on the same listing.
type Coordinator struct {
	scope     TransactionScope
	locker    ListingLocker
	publisher shared.EventPublisher
	observer  CoordinatorObserver
	config    CoordinatorConfig
	logger    *zap.Logger
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	scope TransactionScope,
	locker ListingLocker,
	publisher shared.EventPublisher,
	config CoordinatorConfig,
	logger *zap.Logger,
) *Coordinator {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if publisher == nil {
		publisher = shared.NoopEventPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		observer:  noopObserver{},
		config:    config,
		logger:    logger,
	}
}

// SetObserver installs the metrics observer
func (c *Coordinator) SetObserver(o CoordinatorObserver) {
	if o == nil {
		o = noopObserver{}
	}
	c.observer = o
}

// OnListing runs fn while holding the lock of listingID
func (c *Coordinator) OnListing(ctx context.Context, listingID uuid.UUID, fn func(ctx context.Context, u *Unit) error) error {
	start := time.Now()
	release, err := c.locker.Acquire(ctx, listingID)
	c.observer.LockWaited(ctx, time.Since(start), err == nil)
	if err != nil {
		c.logger.Warn("Failed to acquire listing lock",
			zap.String("listing_id", listingID.String()),
			zap.Error(err))
		c.observer.TransactionFailed(ctx)
		return shared.ErrTransactionFailed.WithMessage("The listing is busy, please retry")
	}
	defer release()

	return c.run(ctx, fn)
}

// Run runs fn in a transaction without taking a listing lock
func (c *Coordinator) Run(ctx context.Context, fn func(ctx context.Context, u *Unit) error) error {
	return c.run(ctx, fn)
}

func (c *Coordinator) run(ctx context.Context, fn func(ctx context.Context, u *Unit) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return c.fail(ctx, err)
		}

		var unit *Unit
		err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			unit = &Unit{TransactionalRepositories: repos}
			return fn(ctx, unit)
		})
		if err == nil {
			c.publish(ctx, unit.events)
			return nil
		}
		lastErr = err

		if !shared.IsRetryable(err) {
			return c.classify(ctx, err)
		}

		c.observer.RetryAttempted(ctx, attempt)
		c.logger.Debug("Concurrency conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.config.MaxAttempts))

		if attempt < c.config.MaxAttempts && c.config.RetryBackoff > 0 {
			timer := time.NewTimer(time.Duration(attempt) * c.config.RetryBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return c.fail(ctx, ctx.Err())
			case <-timer.C:
			}
		}
	}
	return c.fail(ctx, lastErr)
}

// classify returns domain errors verbatim and converts everything else to a transaction failure
func (c *Coordinator) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.fail(ctx, err)
	}
	if de, ok := shared.AsDomainError(err); ok && de.Category != shared.CategoryTransactionFailure {
		if errors.Is(err, marketplace.ErrDateConflict) {
			c.observer.DateConflict(ctx)
		}
		return err
	}
	if errors.Is(err, shared.ErrTransactionFailed) {
		c.observer.TransactionFailed(ctx)
		return err
	}
	return c.fail(ctx, err)
}

func (c *Coordinator) fail(ctx context.Context, cause error) error {
	c.logger.Error("Coordinated operation failed", zap.Error(cause))
	c.observer.TransactionFailed(ctx)
	return shared.ErrTransactionFailed
}

func (c *Coordinator) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, events...); err != nil {
		c.logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
