package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
)

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) Create(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetByContractorID(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Update(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetOrCreateForUpdate(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) WithTx(tx pgx.Tx) wallet.Repository {
	return m
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetByWalletID(ctx context.Context, walletID uuid.UUID, filter ledger.HistoryFilter, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, walletID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) CountByWalletID(ctx context.Context, walletID uuid.UUID, filter ledger.HistoryFilter) (int64, error) {
	args := m.Called(ctx, walletID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepo) SumCompletedByWalletID(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepo) LastCompletedByWalletID(ctx context.Context, walletID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) WithTx(tx pgx.Tx) ledger.Repository {
	return m
}

// MockApprovals mocks the orchestrator slice the services depend on
type MockApprovals struct {
	mock.Mock
}

func (m *MockApprovals) ApproveEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error) {
	args := m.Called(ctx, id, actor, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Eligibility), args.Error(1)
}

func (m *MockApprovals) HoldEligibility(ctx context.Context, id uuid.UUID, reason, actor, correlationID string) (*eligibility.Eligibility, error) {
	args := m.Called(ctx, id, reason, actor, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Eligibility), args.Error(1)
}

func (m *MockApprovals) ReleaseEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error) {
	args := m.Called(ctx, id, actor, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Eligibility), args.Error(1)
}

func (m *MockApprovals) BulkApproveEligibilities(ctx context.Context, ids []uuid.UUID, actor, correlationID string) *orchestrator.BulkResult {
	args := m.Called(ctx, ids, actor, correlationID)
	return args.Get(0).(*orchestrator.BulkResult)
}

func (m *MockApprovals) CreatePayoutRequest(ctx context.Context, contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination, correlationID string) (*payoutrequest.Request, error) {
	args := m.Called(ctx, contractorID, amount, paymentMethod, destination, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payoutrequest.Request), args.Error(1)
}

func (m *MockApprovals) ApprovePayoutRequest(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*payoutrequest.Request, error) {
	args := m.Called(ctx, id, reviewer, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payoutrequest.Request), args.Error(1)
}

func (m *MockApprovals) RejectPayoutRequest(ctx context.Context, id uuid.UUID, reason, reviewer, correlationID string) (*payoutrequest.Request, error) {
	args := m.Called(ctx, id, reason, reviewer, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payoutrequest.Request), args.Error(1)
}

func (m *MockApprovals) Reconcile(ctx context.Context, contractorID uuid.UUID) (*orchestrator.ReconciliationReport, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orchestrator.ReconciliationReport), args.Error(1)
}

func newServiceTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func TestWalletService_GetWalletByContractorID(t *testing.T) {
	logger := newServiceTestLogger()
	ctx := context.Background()
	contractorID := uuid.New()

	t.Run("existing wallet", func(t *testing.T) {
		walletRepo := new(MockWalletRepo)
		ledgerRepo := new(MockLedgerRepo)
		approvals := new(MockApprovals)
		svc := NewWalletService(logger, walletRepo, ledgerRepo, approvals)

		w := wallet.NewWallet(contractorID)
		require.NoError(t, w.Credit(decimal.NewFromInt(600)))
		walletRepo.On("GetByContractorID", ctx, contractorID).Return(w, nil).Once()

		got, err := svc.GetWalletByContractorID(ctx, contractorID)

		assert.NoError(t, err)
		assert.Equal(t, w, got)
		walletRepo.AssertExpectations(t)
	})

	t.Run("no wallet yet returns empty snapshot", func(t *testing.T) {
		walletRepo := new(MockWalletRepo)
		ledgerRepo := new(MockLedgerRepo)
		approvals := new(MockApprovals)
		svc := NewWalletService(logger, walletRepo, ledgerRepo, approvals)

		walletRepo.On("GetByContractorID", ctx, contractorID).Return(nil, wallet.ErrWalletNotFound{ContractorID: contractorID}).Once()

		got, err := svc.GetWalletByContractorID(ctx, contractorID)

		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, uuid.Nil, got.ID)
		assert.Equal(t, contractorID, got.ContractorID)
		assert.True(t, got.Balance.IsZero())
		assert.True(t, got.PendingAmount.IsZero())
		walletRepo.AssertExpectations(t)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		walletRepo := new(MockWalletRepo)
		ledgerRepo := new(MockLedgerRepo)
		approvals := new(MockApprovals)
		svc := NewWalletService(logger, walletRepo, ledgerRepo, approvals)

		dbErr := errors.New("db error")
		walletRepo.On("GetByContractorID", ctx, contractorID).Return(nil, dbErr).Once()

		got, err := svc.GetWalletByContractorID(ctx, contractorID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, dbErr)
		walletRepo.AssertExpectations(t)
	})
}

func TestWalletService_GetTransactions(t *testing.T) {
	logger := newServiceTestLogger()
	ctx := context.Background()
	contractorID := uuid.New()

	t.Run("paginates with offset", func(t *testing.T) {
		walletRepo := new(MockWalletRepo)
		ledgerRepo := new(MockLedgerRepo)
		approvals := new(MockApprovals)
		svc := NewWalletService(logger, walletRepo, ledgerRepo, approvals)

		w := wallet.NewWallet(contractorID)
		walletRepo.On("GetByContractorID", ctx, contractorID).Return(w, nil).Once()

		entries := []*ledger.Entry{
			{ID: uuid.New(), WalletID: w.ID, Kind: shared.EntryKindCredit, Amount: decimal.NewFromInt(600), CreatedAt: time.Now()},
		}
		ledgerRepo.On("GetByWalletID", ctx, w.ID, ledger.HistoryFilter{}, 10, 10).Return(entries, nil).Once()
		ledgerRepo.On("CountByWalletID", ctx, w.ID, ledger.HistoryFilter{}).Return(int64(11), nil).Once()

		got, total, err := svc.GetTransactions(ctx, contractorID, ledger.HistoryFilter{}, 2, 10)

		assert.NoError(t, err)
		assert.Equal(t, entries, got)
		assert.Equal(t, int64(11), total)
		walletRepo.AssertExpectations(t)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("no wallet means empty history", func(t *testing.T) {
		walletRepo := new(MockWalletRepo)
		ledgerRepo := new(MockLedgerRepo)
		approvals := new(MockApprovals)
		svc := NewWalletService(logger, walletRepo, ledgerRepo, approvals)

		walletRepo.On("GetByContractorID", ctx, contractorID).Return(nil, wallet.ErrWalletNotFound{ContractorID: contractorID}).Once()

		got, total, err := svc.GetTransactions(ctx, contractorID, ledger.HistoryFilter{}, 1, 10)

		assert.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, total)
		ledgerRepo.AssertNotCalled(t, "GetByWalletID")
	})
}

func TestWalletService_Reconcile(t *testing.T) {
	logger := newServiceTestLogger()
	ctx := context.Background()
	contractorID := uuid.New()

	walletRepo := new(MockWalletRepo)
	ledgerRepo := new(MockLedgerRepo)
	approvals := new(MockApprovals)
	svc := NewWalletService(logger, walletRepo, ledgerRepo, approvals)

	report := &orchestrator.ReconciliationReport{
		ContractorID:  contractorID,
		CachedBalance: decimal.NewFromInt(500),
		LedgerBalance: decimal.NewFromInt(500),
		Difference:    decimal.Zero,
		Consistent:    true,
	}
	approvals.On("Reconcile", ctx, contractorID).Return(report, nil).Once()

	got, err := svc.Reconcile(ctx, contractorID)

	assert.NoError(t, err)
	assert.Equal(t, report, got)
	approvals.AssertExpectations(t)
}
