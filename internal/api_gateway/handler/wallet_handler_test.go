package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWalletByContractorID(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) GetTransactions(ctx context.Context, contractorID uuid.UUID, filter ledger.HistoryFilter, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, contractorID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletService) Reconcile(ctx context.Context, contractorID uuid.UUID) (*orchestrator.ReconciliationReport, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orchestrator.ReconciliationReport), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

// decodeData unmarshals the envelope's data field into out
func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()

	var topLevelResponse Response
	err := json.Unmarshal(body, &topLevelResponse)
	require.NoError(t, err, "Failed to unmarshal top-level response")
	require.NotNil(t, topLevelResponse.Data, "'data' field should not be nil")

	dataBytes, err := json.Marshal(topLevelResponse.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, out))
}

func TestWalletHandler_GetByContractorID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		w := wallet.NewWallet(contractorID)
		require.NoError(t, w.Credit(decimal.NewFromInt(600)))
		require.NoError(t, w.AddPending(decimal.NewFromInt(100)))
		mockService.On("GetWalletByContractorID", mock.Anything, contractorID).Return(w, nil)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id", handler.GetByContractorID)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody WalletResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)

		assert.Equal(t, w.ID.String(), responseBody.ID)
		assert.Equal(t, contractorID.String(), responseBody.ContractorID)
		assert.Equal(t, "600", responseBody.Balance)
		assert.Equal(t, "100", responseBody.PendingAmount)
		assert.Equal(t, "500", responseBody.Available)

		mockService.AssertExpectations(t)
	})

	t.Run("EmptySnapshot", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		empty := wallet.NewWallet(contractorID)
		empty.ID = uuid.Nil
		mockService.On("GetWalletByContractorID", mock.Anything, contractorID).Return(empty, nil)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id", handler.GetByContractorID)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody WalletResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)

		assert.Empty(t, responseBody.ID)
		assert.Equal(t, "0", responseBody.Balance)
		assert.Equal(t, "0", responseBody.Available)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidContractorID", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id", handler.GetByContractorID)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetWalletByContractorID")
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		mockService.On("GetWalletByContractorID", mock.Anything, contractorID).Return(nil, errors.New("db error"))

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id", handler.GetByContractorID)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestWalletHandler_GetTransactions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()
	walletID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		entries := []*ledger.Entry{
			{
				ID:           uuid.New(),
				WalletID:     walletID,
				Kind:         shared.EntryKindCredit,
				Amount:       decimal.NewFromInt(600),
				BalanceAfter: decimal.NewFromInt(600),
				Status:       shared.EntryStatusCompleted,
				CreatedAt:    time.Now(),
			},
		}
		mockService.On("GetTransactions", mock.Anything, contractorID, ledger.HistoryFilter{}, 1, 10).Return(entries, int64(1), nil)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String()+"/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Meta)
		assert.Equal(t, 1, topLevelResponse.Meta.TotalItems)

		var transactions []TransactionResponse
		decodeData(t, rr.Body.Bytes(), &transactions)
		require.Len(t, transactions, 1)
		assert.Equal(t, "CREDIT", transactions[0].Kind)
		assert.Equal(t, "600", transactions[0].Amount)

		mockService.AssertExpectations(t)
	})

	t.Run("KindFilter", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		mockService.On("GetTransactions", mock.Anything, contractorID, mock.MatchedBy(func(f ledger.HistoryFilter) bool {
			return f.Kind != nil && *f.Kind == shared.EntryKindDebit
		}), 1, 10).Return([]*ledger.Entry{}, int64(0), nil)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String()+"/transactions?kind=DEBIT", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String()+"/transactions?kind=TRANSFER", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetTransactions")
	})

	t.Run("InvalidDateRange", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String()+"/transactions?from=yesterday", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetTransactions")
	})
}

func TestWalletHandler_GetReconciliation(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	contractorID := uuid.New()

	t.Run("Consistent", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		report := &orchestrator.ReconciliationReport{
			WalletID:           uuid.New(),
			ContractorID:       contractorID,
			CachedBalance:      decimal.NewFromInt(500),
			LedgerBalance:      decimal.NewFromInt(500),
			Difference:         decimal.Zero,
			LifetimeConsistent: true,
			Consistent:         true,
		}
		mockService.On("Reconcile", mock.Anything, contractorID).Return(report, nil)

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id/reconciliation", handler.GetReconciliation)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String()+"/reconciliation", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody ReconciliationResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.True(t, responseBody.Consistent)
		assert.Equal(t, "500", responseBody.CachedBalance)
		assert.Equal(t, "0", responseBody.Difference)

		mockService.AssertExpectations(t)
	})

	t.Run("WalletNotFound", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(logger, mockService)

		mockService.On("Reconcile", mock.Anything, contractorID).Return(nil, wallet.ErrWalletNotFound{ContractorID: contractorID})

		router := setupTestRouter()
		router.GET("/wallets/:contractor_id/reconciliation", handler.GetReconciliation)

		req, _ := http.NewRequest(http.MethodGet, "/wallets/"+contractorID.String()+"/reconciliation", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}
