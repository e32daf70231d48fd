package marketplace

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/identity"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

// MockListingRepository is a mock implementation of ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*marketplace.Listing, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) ExistsActiveForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingRepository) FindActive(ctx context.Context, filter shared.Filter) ([]marketplace.Listing, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]marketplace.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) FindByLister(ctx context.Context, listerID uuid.UUID) ([]marketplace.Listing, error) {
	args := m.Called(ctx, listerID)
	return args.Get(0).([]marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) Create(ctx context.Context, listing *marketplace.Listing) error {
	return m.Called(ctx, listing).Error(0)
}

func (m *MockListingRepository) Save(ctx context.Context, listing *marketplace.Listing) error {
	return m.Called(ctx, listing).Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) QueryOverlapping(ctx context.Context, listingID uuid.UUID, kind marketplace.TransactionKind, excluded []marketplace.TransactionStatus, r marketplace.DateRange) ([]marketplace.Transaction, error) {
	args := m.Called(ctx, listingID, kind, excluded, r)
	return args.Get(0).([]marketplace.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]marketplace.Transaction, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).([]marketplace.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]marketplace.Transaction, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]marketplace.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *marketplace.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) Save(ctx context.Context, t *marketplace.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

// MockSwapOfferRepository is a mock implementation of SwapOfferRepository
type MockSwapOfferRepository struct {
	mock.Mock
}

func (m *MockSwapOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.SwapOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.SwapOffer), args.Error(1)
}

func (m *MockSwapOfferRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]marketplace.SwapOffer, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]marketplace.SwapOffer), args.Error(1)
}

func (m *MockSwapOfferRepository) FindByOfferer(ctx context.Context, offererID uuid.UUID) ([]marketplace.SwapOffer, error) {
	args := m.Called(ctx, offererID)
	return args.Get(0).([]marketplace.SwapOffer), args.Error(1)
}

func (m *MockSwapOfferRepository) Create(ctx context.Context, o *marketplace.SwapOffer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockSwapOfferRepository) Save(ctx context.Context, o *marketplace.SwapOffer) error {
	return m.Called(ctx, o).Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]catalog.Item, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// stubLocker counts acquisitions and can be made to fail
type stubLocker struct {
	mu       sync.Mutex
	err      error
	acquired []uuid.UUID
	released int
}

func (l *stubLocker) Acquire(_ context.Context, listingID uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, listingID)
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

// fixture wires services over mock repositories and a no-op scope
type fixture struct {
	listings     *MockListingRepository
	transactions *MockTransactionRepository
	offers       *MockSwapOfferRepository
	items        *MockItemRepository
	users        *MockUserRepository
	locker       *stubLocker
	publisher    *recordingPublisher
	coordinator  *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		listings:     new(MockListingRepository),
		transactions: new(MockTransactionRepository),
		offers:       new(MockSwapOfferRepository),
		items:        new(MockItemRepository),
		users:        new(MockUserRepository),
		locker:       &stubLocker{},
		publisher:    &recordingPublisher{},
	}
	scope := NewNoOpTransactionScope(f.listings, f.transactions, f.offers, f.items)
	f.coordinator = NewCoordinator(scope, f.locker, f.publisher, CoordinatorConfig{MaxAttempts: 3}, nil)
	return f
}
