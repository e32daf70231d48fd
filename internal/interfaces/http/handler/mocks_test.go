package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/swapmarket/backend/internal/application/catalog"
	"github.com/swapmarket/backend/internal/application/identity"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
	"github.com/swapmarket/backend/internal/infrastructure/logger"
	"github.com/swapmarket/backend/internal/interfaces/http/dto"
	"github.com/swapmarket/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestRouter returns an engine that authenticates every request as actor
// when actor is not nil
func newTestRouter(actor *uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if actor != nil {
		id := actor.String()
		r.Use(func(c *gin.Context) {
			c.Set(logger.GinUserIDKey, id)
			c.Next()
		})
	}
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, input identity.RegisterInput) (*identity.UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

type MockItemService struct{ mock.Mock }

func (m *MockItemService) Create(ctx context.Context, actorID uuid.UUID, req catalogapp.CreateItemRequest) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

func (m *MockItemService) ListMine(ctx context.Context, actorID uuid.UUID) ([]catalogapp.ItemResponse, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.ItemResponse), args.Error(1)
}

func (m *MockItemService) Update(ctx context.Context, actorID, itemID uuid.UUID, req catalogapp.UpdateItemRequest) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, actorID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, actorID, itemID uuid.UUID) error {
	return m.Called(ctx, actorID, itemID).Error(0)
}

func (m *MockItemService) RequestImageUpload(ctx context.Context, actorID, itemID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error) {
	args := m.Called(ctx, actorID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImageUploadResponse), args.Error(1)
}

type MockListingService struct{ mock.Mock }

func (m *MockListingService) Create(ctx context.Context, actorID uuid.UUID, req marketapp.CreateListingRequest) (*marketapp.ListingResponse, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.ListingResponse), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, actorID, listingID uuid.UUID, req marketapp.UpdateListingRequest) (*marketapp.UpdateListingResult, error) {
	args := m.Called(ctx, actorID, listingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.UpdateListingResult), args.Error(1)
}

func (m *MockListingService) Deactivate(ctx context.Context, actorID, listingID uuid.UUID) error {
	return m.Called(ctx, actorID, listingID).Error(0)
}

func (m *MockListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*marketapp.ListingResponse, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.ListingResponse), args.Error(1)
}

func (m *MockListingService) ListActive(ctx context.Context, req marketapp.ListListingsRequest) (*shared.Paginated[marketapp.ListingResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[marketapp.ListingResponse]), args.Error(1)
}

func (m *MockListingService) ListMine(ctx context.Context, actorID uuid.UUID) ([]marketapp.ListingResponse, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketapp.ListingResponse), args.Error(1)
}

type MockTransactionService struct{ mock.Mock }

func (m *MockTransactionService) Buy(ctx context.Context, actorID uuid.UUID, req marketapp.BuyRequest) (*marketapp.TransactionResponse, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) Rent(ctx context.Context, actorID uuid.UUID, req marketapp.RentRequest) (*marketapp.TransactionResponse, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) RespondToRental(ctx context.Context, actorID, transactionID uuid.UUID, req marketapp.RespondRequest) (*marketapp.TransactionResponse, error) {
	args := m.Called(ctx, actorID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) ListMine(ctx context.Context, actorID uuid.UUID) ([]marketapp.TransactionResponse, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) ListForListing(ctx context.Context, actorID, listingID uuid.UUID) ([]marketapp.TransactionResponse, error) {
	args := m.Called(ctx, actorID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketapp.TransactionResponse), args.Error(1)
}

type MockOfferService struct{ mock.Mock }

func (m *MockOfferService) MakeOffer(ctx context.Context, actorID uuid.UUID, req marketapp.MakeOfferRequest) (*marketapp.OfferResponse, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.OfferResponse), args.Error(1)
}

func (m *MockOfferService) RespondToOffer(ctx context.Context, actorID, offerID uuid.UUID, req marketapp.RespondRequest) (*marketapp.OfferResponse, error) {
	args := m.Called(ctx, actorID, offerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketapp.OfferResponse), args.Error(1)
}

func (m *MockOfferService) ListMine(ctx context.Context, actorID uuid.UUID) ([]marketapp.OfferResponse, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketapp.OfferResponse), args.Error(1)
}

func (m *MockOfferService) ListForListing(ctx context.Context, actorID, listingID uuid.UUID) ([]marketapp.OfferResponse, error) {
	args := m.Called(ctx, actorID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketapp.OfferResponse), args.Error(1)
}
