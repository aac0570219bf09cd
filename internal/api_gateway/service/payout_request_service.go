package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
)

// PayoutRequestServiceImpl implements the PayoutRequestService interface
type PayoutRequestServiceImpl struct {
	requestRepo payoutrequest.Repository
	approvals   Approvals
	logger      *slog.Logger
}

// NewPayoutRequestService creates a new payout request service
func NewPayoutRequestService(logger *slog.Logger, requestRepo payoutrequest.Repository, approvals Approvals) PayoutRequestService {
	return &PayoutRequestServiceImpl{
		requestRepo: requestRepo,
		approvals:   approvals,
		logger:      logger,
	}
}

// CreateRequest reserves the amount from the contractor's available balance
// and files a PENDING withdrawal request
func (s *PayoutRequestServiceImpl) CreateRequest(ctx context.Context, contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination, correlationID string) (*payoutrequest.Request, error) {
	return s.approvals.CreatePayoutRequest(ctx, contractorID, amount, paymentMethod, destination, correlationID)
}

// ListRequests retrieves a paginated payout request list, newest first
func (s *PayoutRequestServiceImpl) ListRequests(ctx context.Context, filter payoutrequest.ListFilter, page, perPage int) ([]*payoutrequest.Request, int64, error) {
	offset := (page - 1) * perPage

	requests, err := s.requestRepo.List(ctx, filter, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ApproveRequest debits the wallet, releases the reservation and settles the
// request as COMPLETED
func (s *PayoutRequestServiceImpl) ApproveRequest(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*payoutrequest.Request, error) {
	return s.approvals.ApprovePayoutRequest(ctx, id, reviewer, correlationID)
}

// RejectRequest releases the reservation and marks the request REJECTED
func (s *PayoutRequestServiceImpl) RejectRequest(ctx context.Context, id uuid.UUID, reason, reviewer, correlationID string) (*payoutrequest.Request, error) {
	return s.approvals.RejectPayoutRequest(ctx, id, reason, reviewer, correlationID)
}
