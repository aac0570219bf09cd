package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
)

// EligibilityServiceImpl implements the EligibilityService interface
type EligibilityServiceImpl struct {
	eligibilityRepo eligibility.Repository
	approvals       Approvals
	logger          *slog.Logger
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(logger *slog.Logger, eligibilityRepo eligibility.Repository, approvals Approvals) EligibilityService {
	return &EligibilityServiceImpl{
		eligibilityRepo: eligibilityRepo,
		approvals:       approvals,
		logger:          logger,
	}
}

// ListEligibilities retrieves a paginated eligibility list, oldest
// verification first
func (s *EligibilityServiceImpl) ListEligibilities(ctx context.Context, filter eligibility.ListFilter, page, perPage int) ([]*eligibility.Eligibility, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.eligibilityRepo.List(ctx, filter, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.eligibilityRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ApproveEligibility credits the contractor's wallet and marks the record PAID
func (s *EligibilityServiceImpl) ApproveEligibility(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*eligibility.Eligibility, error) {
	return s.approvals.ApproveEligibility(ctx, id, reviewer, correlationID)
}

// HoldEligibility moves a READY record to ON_HOLD
func (s *EligibilityServiceImpl) HoldEligibility(ctx context.Context, id uuid.UUID, reason, actor, correlationID string) (*eligibility.Eligibility, error) {
	return s.approvals.HoldEligibility(ctx, id, reason, actor, correlationID)
}

// ReleaseEligibility moves an ON_HOLD record back to READY
func (s *EligibilityServiceImpl) ReleaseEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error) {
	return s.approvals.ReleaseEligibility(ctx, id, actor, correlationID)
}

// BulkApproveEligibilities approves each record in its own transaction and
// reports per-item outcomes
func (s *EligibilityServiceImpl) BulkApproveEligibilities(ctx context.Context, ids []uuid.UUID, reviewer, correlationID string) *orchestrator.BulkResult {
	return s.approvals.BulkApproveEligibilities(ctx, ids, reviewer, correlationID)
}
