//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/swapmarket/backend/internal/application/catalog"
	identityapp "github.com/swapmarket/backend/internal/application/identity"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/domain/identity"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/infrastructure/auth"
	"github.com/swapmarket/backend/internal/infrastructure/config"
	"github.com/swapmarket/backend/internal/infrastructure/event"
	"github.com/swapmarket/backend/internal/infrastructure/lock"
	"github.com/swapmarket/backend/internal/infrastructure/persistence"
	"github.com/swapmarket/backend/internal/interfaces/http/handler"
	"github.com/swapmarket/backend/internal/interfaces/http/middleware"
	"github.com/swapmarket/backend/internal/interfaces/http/router"
	"github.com/swapmarket/backend/tests/testutil"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	identity.SetPasswordCost(bcrypt.MinCost)
}

// TestServer is the full HTTP stack over a real database
type TestServer struct {
	DB     *TestDB
	Engine http.Handler
	Events *testutil.RecordingEventHandler
}

type serverOptions struct {
	redisLocks bool
}

// ServerOption customizes NewTestServer
type ServerOption func(*serverOptions)

// WithRedisLocks coordinates listings through redsync on an in-memory redis
func WithRedisLocks() ServerOption {
	return func(o *serverOptions) { o.redisLocks = true }
}

// NewTestServer wires repositories, coordinator, services and router the way the server does
func NewTestServer(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	tdb := NewTestDB(t)
	db := tdb.DB

	userRepo := persistence.NewGormUserRepository(db)
	itemRepo := persistence.NewGormItemRepository(db)
	listingRepo := persistence.NewGormListingRepository(db)
	txRepo := persistence.NewGormTransactionRepository(db)
	offerRepo := persistence.NewGormSwapOfferRepository(db)

	var locker marketapp.ListingLocker = lock.NewLocalLocker(5 * time.Second)
	if o.redisLocks {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		locker = lock.NewRedisLocker(client, lock.RedisOptions{
			Timeout:    5 * time.Second,
			RetryDelay: 5 * time.Millisecond,
		}, nil)
	}

	events := testutil.NewRecordingEventHandler(marketplace.AllEventTypes...)
	bus := event.NewInMemoryEventBus(nil)
	bus.Subscribe(events)
	require.NoError(t, bus.Start(t.Context()))

	coordinator := marketapp.NewCoordinator(
		persistence.NewGormTransactionScope(db),
		locker,
		bus,
		marketapp.DefaultCoordinatorConfig(),
		nil,
	)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-secret-of-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "swapmarket-test",
	})
	listingService := marketapp.NewListingService(coordinator, listingRepo, itemRepo, userRepo, nil)
	transactionService := marketapp.NewTransactionService(coordinator, listingRepo, txRepo, nil)
	offerService := marketapp.NewOfferService(coordinator, listingRepo, offerRepo, itemRepo, nil)
	itemService := catalogapp.NewItemService(itemRepo, coordinator, nil, 0, nil)

	engine := router.New(router.Options{
		Security:       middleware.DefaultSecurityConfig(),
		TokenValidator: jwtService,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, nil)),
		Items:        handler.NewItemHandler(itemService),
		Listings:     handler.NewListingHandler(listingService, transactionService, offerService),
		Transactions: handler.NewTransactionHandler(transactionService),
		Offers:       handler.NewOfferHandler(offerService),
		Health:       handler.NewHealthHandler("test", nil),
	})

	return &TestServer{DB: tdb, Engine: engine, Events: events}
}

// Client returns an unauthenticated API client
func (s *TestServer) Client(t *testing.T) *testutil.APIClient {
	return testutil.NewAPIClient(t, s.Engine)
}

// User is a registered and logged-in account
type User struct {
	Username string
	API      *testutil.APIClient
}

// SignUp registers username and returns a client carrying its token
func (s *TestServer) SignUp(t *testing.T, username string) *User {
	t.Helper()
	anon := s.Client(t)

	resp := anon.Post("/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.ErrorCode())

	resp = anon.Post("/api/v1/auth/login", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.ErrorCode())
	login := testutil.DataAs[identityapp.LoginResult](t, resp)

	return &User{Username: username, API: anon.WithToken(login.AccessToken)}
}

// CreateItem adds an item to the user's catalog
func (u *User) CreateItem(t *testing.T, title string) catalogapp.ItemResponse {
	t.Helper()
	resp := u.API.Post("/api/v1/items", map[string]string{"title": title, "category": "misc"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.ErrorCode())
	return testutil.DataAs[catalogapp.ItemResponse](t, resp)
}

// List lists a fresh item with the given terms
func (u *User) List(t *testing.T, title string, terms map[string]any) marketapp.ListingResponse {
	t.Helper()
	item := u.CreateItem(t, title)
	body := map[string]any{"item_id": item.ID.String()}
	for k, v := range terms {
		body[k] = v
	}
	resp := u.API.Post("/api/v1/listings", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.ErrorCode())
	return testutil.DataAs[marketapp.ListingResponse](t, resp)
}
