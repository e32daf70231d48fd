package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	marketapp "github.com/swapmarket/backend/internal/application/marketplace"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/domain/shared"
)

func newTransactionRouter(actor *uuid.UUID, svc *MockTransactionService) http.Handler {
	r := newTestRouter(actor)
	h := NewTransactionHandler(svc)
	r.POST("/transactions/buy", h.Buy)
	r.POST("/transactions/rent", h.Rent)
	r.POST("/transactions/:id/respond", h.Respond)
	r.GET("/transactions/mine", h.ListMine)
	return r
}

func TestTransactionHandler_Buy(t *testing.T) {
	actor := uuid.New()
	listingID := uuid.New()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"completed", nil, http.StatusCreated, ""},
		{"listing gone", marketplace.ErrGone, http.StatusGone, "GONE"},
		{"wrong kind", marketplace.ErrWrongKind, http.StatusBadRequest, "WRONG_KIND"},
		{"own listing", marketplace.ErrSelfTransaction, http.StatusBadRequest, "SELF_TRANSACTION"},
		{"missing listing", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"commit failed", shared.ErrTransactionFailed, http.StatusServiceUnavailable, "TRANSACTION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTransactionService)
			call := svc.On("Buy", mock.Anything, actor, marketapp.BuyRequest{ListingID: listingID})
			if tt.err != nil {
				call.Return(nil, tt.err)
			} else {
				call.Return(&marketapp.TransactionResponse{ID: uuid.New(), Kind: "SALE", Status: "COMPLETED"}, nil)
			}

			w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/buy", map[string]any{"listing_id": listingID})

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
			}
		})
	}
}

func TestTransactionHandler_Rent(t *testing.T) {
	actor := uuid.New()
	listingID := uuid.New()

	t.Run("pending rental", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("Rent", mock.Anything, actor, marketapp.RentRequest{ListingID: listingID, StartDate: "2030-05-01", EndDate: "2030-05-04"}).
			Return(&marketapp.TransactionResponse{ID: uuid.New(), Kind: "RENTAL", Status: "PENDING"}, nil)

		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/rent", map[string]any{
			"listing_id": listingID, "start_date": "2030-05-01", "end_date": "2030-05-04",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("date conflict reports the blocking period", func(t *testing.T) {
		period, err := marketplace.ParseDateRange("2030-05-02", "2030-05-06")
		require.NoError(t, err)
		svc := new(MockTransactionService)
		svc.On("Rent", mock.Anything, actor, mock.Anything).Return(nil, &marketplace.DateConflictError{
			DomainError:   marketplace.ErrDateConflict,
			TransactionID: uuid.New(),
			Conflicting:   period,
		})

		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/rent", map[string]any{
			"listing_id": listingID, "start_date": "2030-05-01", "end_date": "2030-05-04",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w)
		assert.Equal(t, "DATE_CONFLICT", env.Error.Code)
		assert.Equal(t, "2030-05-02", env.Error.Details["conflicting_start"])
		assert.Equal(t, "2030-05-06", env.Error.Details["conflicting_end"])
	})

	t.Run("malformed date never reaches the service", func(t *testing.T) {
		svc := new(MockTransactionService)

		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/rent", map[string]any{
			"listing_id": listingID, "start_date": "05/01/2030", "end_date": "2030-05-04",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_DATE_RANGE", errorCode(t, w))
		svc.AssertNotCalled(t, "Rent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing dates are left to the domain", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("Rent", mock.Anything, actor, marketapp.RentRequest{ListingID: listingID}).Return(nil, marketplace.ErrInvalidDateRange)

		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/rent", map[string]any{"listing_id": listingID})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_DATE_RANGE", errorCode(t, w))
	})
}

func TestTransactionHandler_Respond(t *testing.T) {
	actor := uuid.New()
	txnID := uuid.New()

	t.Run("accept", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("RespondToRental", mock.Anything, actor, txnID, marketapp.RespondRequest{Action: "ACCEPT"}).
			Return(&marketapp.TransactionResponse{ID: txnID, Status: "ACCEPTED"}, nil)

		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/"+txnID.String()+"/respond", map[string]string{"action": "ACCEPT"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("already responded", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("RespondToRental", mock.Anything, actor, txnID, mock.Anything).Return(nil, marketplace.ErrAlreadyResponded)

		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/"+txnID.String()+"/respond", map[string]string{"action": "REJECT"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_RESPONDED", errorCode(t, w))
	})

	t.Run("action required", func(t *testing.T) {
		svc := new(MockTransactionService)
		w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodPost, "/transactions/"+txnID.String()+"/respond", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransactionHandler_ListMine(t *testing.T) {
	actor := uuid.New()
	svc := new(MockTransactionService)
	svc.On("ListMine", mock.Anything, actor).Return([]marketapp.TransactionResponse{{ID: uuid.New()}}, nil)

	w := doJSON(t, newTransactionRouter(&actor, svc), http.MethodGet, "/transactions/mine", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
