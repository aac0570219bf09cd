package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
)

// WalletServiceImpl implements the WalletService interface
type WalletServiceImpl struct {
	walletRepo wallet.Repository
	ledgerRepo ledger.Repository
	approvals  Approvals
	logger     *slog.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(logger *slog.Logger, walletRepo wallet.Repository, ledgerRepo ledger.Repository, approvals Approvals) WalletService {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		approvals:  approvals,
		logger:     logger,
	}
}

// GetWalletByContractorID retrieves a contractor's wallet snapshot. A
// contractor without a wallet row gets an all-zero snapshot, since wallets
// materialize only on first credit.
func (s *WalletServiceImpl) GetWalletByContractorID(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error) {
	w, err := s.walletRepo.GetByContractorID(ctx, contractorID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			s.logger.Debug("No wallet row yet, returning empty snapshot", "contractor_id", contractorID.String())
			empty := wallet.NewWallet(contractorID)
			empty.ID = uuid.Nil
			return empty, nil
		}
		s.logger.Error("Failed to get wallet", "contractor_id", contractorID.String(), "error", err)
		return nil, err
	}
	return w, nil
}

// GetTransactions retrieves a contractor's paginated transaction history,
// newest first. A contractor without a wallet has no history.
func (s *WalletServiceImpl) GetTransactions(ctx context.Context, contractorID uuid.UUID, filter ledger.HistoryFilter, page, perPage int) ([]*ledger.Entry, int64, error) {
	w, err := s.walletRepo.GetByContractorID(ctx, contractorID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			return []*ledger.Entry{}, 0, nil
		}
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	entries, err := s.ledgerRepo.GetByWalletID(ctx, w.ID, filter, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByWalletID(ctx, w.ID, filter)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Reconcile rebuilds the contractor's balance from COMPLETED ledger entries
// and compares it with the cached wallet
func (s *WalletServiceImpl) Reconcile(ctx context.Context, contractorID uuid.UUID) (*orchestrator.ReconciliationReport, error) {
	return s.approvals.Reconcile(ctx, contractorID)
}
