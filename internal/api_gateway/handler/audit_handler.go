package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/service"
	"github.com/tradeworks-payout-ledger/internal/domain/audit"
)

// AuditHandler handles HTTP requests for audit trail reads
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetByEntityID retrieves the state transitions recorded for an eligibility
// or payout request, oldest first. An entity with no recorded transitions
// gets an empty list.
func (h *AuditHandler) GetByEntityID(c *gin.Context) {
	entityID, ok := parseUUIDParam(c, h.logger, "entity_id")
	if !ok {
		return
	}

	records, err := h.auditService.GetTrailByEntityID(c.Request.Context(), entityID)
	if err != nil {
		h.logger.Error("Failed to get audit trail", "entity_id", entityID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransitionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapTransitionToResponse(record))
	}

	RespondOK(c, responses)
}

// mapTransitionToResponse maps a transition record to its response DTO
func mapTransitionToResponse(record *audit.TransitionRecord) TransitionResponse {
	return TransitionResponse{
		EventID:       record.EventID.String(),
		EntityKind:    record.EntityKind,
		EntityID:      record.EntityID.String(),
		ContractorID:  record.ContractorID.String(),
		FromStatus:    record.FromStatus,
		ToStatus:      record.ToStatus,
		Amount:        record.Amount.String(),
		Actor:         record.Actor,
		Reason:        record.Reason,
		CorrelationID: record.CorrelationID,
		OccurredAt:    record.OccurredAt.Format(time.RFC3339),
	}
}
