package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/middleware"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/service"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// EligibilityHandler handles HTTP requests for payout eligibility operations
type EligibilityHandler struct {
	eligibilityService service.EligibilityService
	logger             *slog.Logger
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(logger *slog.Logger, eligibilityService service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{
		eligibilityService: eligibilityService,
		logger:             logger,
	}
}

// List retrieves a paginated eligibility list with optional status and
// contractor filters, oldest verification first
func (h *EligibilityHandler) List(c *gin.Context) {
	var params EligibilityListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid eligibility filters", "error", err)
		RespondBadRequest(c, "Invalid eligibility filters: "+err.Error())
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	var filter eligibility.ListFilter
	if params.Status != "" {
		status := shared.EligibilityStatus(params.Status)
		filter.Status = &status
	}
	if params.ContractorID != "" {
		contractorID, err := uuid.Parse(params.ContractorID)
		if err != nil {
			RespondBadRequest(c, "Invalid contractor_id")
			return
		}
		filter.ContractorID = &contractorID
	}

	records, total, err := h.eligibilityService.ListEligibilities(
		c.Request.Context(),
		filter,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to list eligibilities", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]EligibilityResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapEligibilityToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Approve credits the contractor's wallet for a READY eligibility and marks
// it PAID. A record that was already approved or held responds 409.
func (h *EligibilityHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id")
	if !ok {
		return
	}

	var req ReviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.eligibilityService.ApproveEligibility(c.Request.Context(), id, req.Reviewer, middleware.GetCorrelationID(c))
	if err != nil {
		h.respondEligibilityError(c, id, err, "approve")
		return
	}

	RespondOK(c, mapEligibilityToResponse(record))
}

// Hold moves a READY eligibility to ON_HOLD for admin review
func (h *EligibilityHandler) Hold(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id")
	if !ok {
		return
	}

	var req HoldEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.eligibilityService.HoldEligibility(c.Request.Context(), id, req.Reason, req.Reviewer, middleware.GetCorrelationID(c))
	if err != nil {
		h.respondEligibilityError(c, id, err, "hold")
		return
	}

	RespondOK(c, mapEligibilityToResponse(record))
}

// Release moves an ON_HOLD eligibility back to READY
func (h *EligibilityHandler) Release(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id")
	if !ok {
		return
	}

	var req ReviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.eligibilityService.ReleaseEligibility(c.Request.Context(), id, req.Reviewer, middleware.GetCorrelationID(c))
	if err != nil {
		h.respondEligibilityError(c, id, err, "release")
		return
	}

	RespondOK(c, mapEligibilityToResponse(record))
}

// BulkApprove approves several eligibilities, each in its own transaction,
// and reports per-item outcomes. Partial success responds 200.
func (h *EligibilityHandler) BulkApprove(c *gin.Context) {
	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid eligibility ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	result := h.eligibilityService.BulkApproveEligibilities(c.Request.Context(), ids, req.Reviewer, middleware.GetCorrelationID(c))

	response := BulkApproveResponse{
		Requested:     result.Requested,
		ApprovedCount: len(result.Approved),
		FailedCount:   len(result.Failed),
		TotalCredited: result.TotalCredited.String(),
		Approved:      make([]string, 0, len(result.Approved)),
		Failed:        make([]BulkItemFailure, 0, len(result.Failed)),
	}
	for _, id := range result.Approved {
		response.Approved = append(response.Approved, id.String())
	}
	for _, failure := range result.Failed {
		response.Failed = append(response.Failed, BulkItemFailure{
			ID:     failure.ID.String(),
			Reason: failure.Reason,
		})
	}

	RespondOK(c, response)
}

// respondEligibilityError maps service errors to HTTP responses
func (h *EligibilityHandler) respondEligibilityError(c *gin.Context, id uuid.UUID, err error, action string) {
	switch {
	case errors.Is(err, eligibility.ErrEligibilityNotFound{}):
		RespondNotFound(c, "Payout eligibility not found")
	case errors.Is(err, shared.ErrStaleState{}), errors.Is(err, shared.ErrInvalidTransition{}):
		RespondConflict(c, err.Error())
	default:
		h.logger.Error("Failed to "+action+" eligibility", "eligibility_id", id.String(), "error", err)
		RespondInternalError(c)
	}
}

// mapEligibilityToResponse maps an eligibility entity to its response DTO
func mapEligibilityToResponse(e *eligibility.Eligibility) EligibilityResponse {
	response := EligibilityResponse{
		ID:           e.ID.String(),
		JobID:        e.JobID.String(),
		ContractorID: e.ContractorID.String(),
		Amount:       e.Amount.String(),
		Status:       string(e.Status),
		VerifiedAt:   e.VerifiedAt.Format(time.RFC3339),
		Notes:        e.Notes,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}

	if e.LinkedTransactionID != nil {
		response.LinkedTransactionID = e.LinkedTransactionID.String()
	}

	return response
}
