package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
)

type MockPayoutRequestService struct {
	mock.Mock
}

func (m *MockPayoutRequestService) CreateRequest(ctx context.Context, contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination, correlationID string) (*payoutrequest.Request, error) {
	args := m.Called(ctx, contractorID, amount, paymentMethod, destination, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payoutrequest.Request), args.Error(1)
}

func (m *MockPayoutRequestService) ListRequests(ctx context.Context, filter payoutrequest.ListFilter, page, perPage int) ([]*payoutrequest.Request, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*payoutrequest.Request), args.Get(1).(int64), args.Error(2)
}

func (m *MockPayoutRequestService) ApproveRequest(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*payoutrequest.Request, error) {
	args := m.Called(ctx, id, reviewer, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payoutrequest.Request), args.Error(1)
}

func (m *MockPayoutRequestService) RejectRequest(ctx context.Context, id uuid.UUID, reason, reviewer, correlationID string) (*payoutrequest.Request, error) {
	args := m.Called(ctx, id, reason, reviewer, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payoutrequest.Request), args.Error(1)
}

func newTestRequest(t *testing.T, contractorID uuid.UUID) *payoutrequest.Request {
	t.Helper()
	request, err := payoutrequest.NewRequest(contractorID, decimal.NewFromInt(100), "BANK_TRANSFER", "NL91ABNA0417164300")
	require.NoError(t, err)
	return request
}

func TestPayoutRequestHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		request := newTestRequest(t, contractorID)
		mockService.On("CreateRequest", mock.Anything, contractorID, decimal.NewFromInt(100), "BANK_TRANSFER", "NL91ABNA0417164300", mock.Anything).Return(request, nil)

		router := setupTestRouter()
		router.POST("/payout-requests", handler.Create)

		body, _ := json.Marshal(CreatePayoutRequestRequest{
			ContractorID:  contractorID.String(),
			Amount:        "100",
			PaymentMethod: "BANK_TRANSFER",
			Destination:   "NL91ABNA0417164300",
		})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody PayoutRequestResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, request.ID.String(), responseBody.ID)
		assert.Equal(t, "PENDING", responseBody.Status)
		assert.Equal(t, request.RequestNumber, responseBody.RequestNumber)

		mockService.AssertExpectations(t)
	})

	t.Run("InsufficientAvailableBalance", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		mockService.On("CreateRequest", mock.Anything, contractorID, mock.Anything, "BANK_TRANSFER", "NL91ABNA0417164300", mock.Anything).
			Return(nil, payoutrequest.ErrInsufficientAvailableBalance{ContractorID: contractorID})

		router := setupTestRouter()
		router.POST("/payout-requests", handler.Create)

		body, _ := json.Marshal(CreatePayoutRequestRequest{
			ContractorID:  contractorID.String(),
			Amount:        "100000",
			PaymentMethod: "BANK_TRANSFER",
			Destination:   "NL91ABNA0417164300",
		})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/payout-requests", handler.Create)

		body, _ := json.Marshal(CreatePayoutRequestRequest{
			ContractorID:  contractorID.String(),
			Amount:        "a lot",
			PaymentMethod: "BANK_TRANSFER",
			Destination:   "NL91ABNA0417164300",
		})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateRequest")
	})

	t.Run("MissingPaymentMethod", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/payout-requests", handler.Create)

		body, _ := json.Marshal(CreatePayoutRequestRequest{
			ContractorID: contractorID.String(),
			Amount:       "100",
			Destination:  "NL91ABNA0417164300",
		})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateRequest")
	})
}

func TestPayoutRequestHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()

	t.Run("StatusAndContractorFilter", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		requests := []*payoutrequest.Request{newTestRequest(t, contractorID)}
		mockService.On("ListRequests", mock.Anything, mock.MatchedBy(func(f payoutrequest.ListFilter) bool {
			return f.Status != nil && *f.Status == shared.RequestStatusPending &&
				f.ContractorID != nil && *f.ContractorID == contractorID
		}), 1, 10).Return(requests, int64(1), nil)

		router := setupTestRouter()
		router.GET("/payout-requests", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/payout-requests?status=PENDING&contractor_id="+contractorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responses []PayoutRequestResponse
		decodeData(t, rr.Body.Bytes(), &responses)
		require.Len(t, responses, 1)
		assert.Equal(t, "PENDING", responses[0].Status)

		mockService.AssertExpectations(t)
	})
}

func TestPayoutRequestHandler_Approve(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		request := newTestRequest(t, contractorID)
		require.NoError(t, request.Approve("finance.ops"))
		require.NoError(t, request.Complete(uuid.New()))
		mockService.On("ApproveRequest", mock.Anything, request.ID, "finance.ops", mock.Anything).Return(request, nil)

		router := setupTestRouter()
		router.POST("/payout-requests/:id/approve", handler.Approve)

		body, _ := json.Marshal(ReviewActionRequest{Reviewer: "finance.ops"})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests/"+request.ID.String()+"/approve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody PayoutRequestResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, "COMPLETED", responseBody.Status)
		assert.Equal(t, "finance.ops", responseBody.ReviewedBy)
		assert.NotEmpty(t, responseBody.LinkedTransactionID)

		mockService.AssertExpectations(t)
	})

	t.Run("AlreadyReviewed", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		id := uuid.New()
		mockService.On("ApproveRequest", mock.Anything, id, "finance.ops", mock.Anything).Return(nil, shared.ErrStaleState{
			Entity:   "payout request",
			ID:       id,
			Expected: "PENDING",
			Actual:   "REJECTED",
		})

		router := setupTestRouter()
		router.POST("/payout-requests/:id/approve", handler.Approve)

		body, _ := json.Marshal(ReviewActionRequest{Reviewer: "finance.ops"})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests/"+id.String()+"/approve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		id := uuid.New()
		mockService.On("ApproveRequest", mock.Anything, id, "finance.ops", mock.Anything).Return(nil, wallet.ErrInsufficientFunds)

		router := setupTestRouter()
		router.POST("/payout-requests/:id/approve", handler.Approve)

		body, _ := json.Marshal(ReviewActionRequest{Reviewer: "finance.ops"})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests/"+id.String()+"/approve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		id := uuid.New()
		mockService.On("ApproveRequest", mock.Anything, id, "finance.ops", mock.Anything).Return(nil, payoutrequest.ErrRequestNotFound{RequestID: id})

		router := setupTestRouter()
		router.POST("/payout-requests/:id/approve", handler.Approve)

		body, _ := json.Marshal(ReviewActionRequest{Reviewer: "finance.ops"})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests/"+id.String()+"/approve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestPayoutRequestHandler_Reject(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		request := newTestRequest(t, contractorID)
		require.NoError(t, request.Reject("destination account could not be verified", "finance.ops"))
		mockService.On("RejectRequest", mock.Anything, request.ID, "destination account could not be verified", "finance.ops", mock.Anything).Return(request, nil)

		router := setupTestRouter()
		router.POST("/payout-requests/:id/reject", handler.Reject)

		body, _ := json.Marshal(RejectPayoutRequestRequest{
			Reason:   "destination account could not be verified",
			Reviewer: "finance.ops",
		})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests/"+request.ID.String()+"/reject", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody PayoutRequestResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, "REJECTED", responseBody.Status)
		assert.Equal(t, "destination account could not be verified", responseBody.RejectionReason)

		mockService.AssertExpectations(t)
	})

	t.Run("MissingReason", func(t *testing.T) {
		mockService := new(MockPayoutRequestService)
		handler := NewPayoutRequestHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/payout-requests/:id/reject", handler.Reject)

		body, _ := json.Marshal(ReviewActionRequest{Reviewer: "finance.ops"})
		req, _ := http.NewRequest(http.MethodPost, "/payout-requests/"+uuid.New().String()+"/reject", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RejectRequest")
	})
}
