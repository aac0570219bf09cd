package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tradeworks-payout-ledger/internal/domain/audit"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	trailRepo audit.TrailRepository
	logger    *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(logger *slog.Logger, trailRepo audit.TrailRepository) AuditService {
	return &AuditServiceImpl{
		trailRepo: trailRepo,
		logger:    logger,
	}
}

// GetTrailByEntityID retrieves an entity's state transitions oldest first
func (s *AuditServiceImpl) GetTrailByEntityID(ctx context.Context, entityID uuid.UUID) ([]*audit.TransitionRecord, error) {
	records, err := s.trailRepo.GetByEntityID(ctx, entityID)
	if err != nil {
		s.logger.Error("Failed to get audit trail", "entity_id", entityID.String(), "error", err)
		return nil, err
	}
	return records, nil
}
