package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/middleware"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/service"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
)

// PayoutRequestHandler handles HTTP requests for payout request operations
type PayoutRequestHandler struct {
	requestService service.PayoutRequestService
	logger         *slog.Logger
}

// NewPayoutRequestHandler creates a new payout request handler
func NewPayoutRequestHandler(logger *slog.Logger, requestService service.PayoutRequestService) *PayoutRequestHandler {
	return &PayoutRequestHandler{
		requestService: requestService,
		logger:         logger,
	}
}

// Create files a PENDING withdrawal request, reserving the amount from the
// contractor's available balance. An amount exceeding the unreserved balance
// responds 409.
func (h *PayoutRequestHandler) Create(c *gin.Context) {
	var req CreatePayoutRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	contractorID, err := uuid.Parse(req.ContractorID)
	if err != nil {
		RespondBadRequest(c, "Invalid contractor ID")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.logger.Error("Invalid amount", "amount", req.Amount, "error", err)
		RespondBadRequest(c, "Invalid amount")
		return
	}

	request, err := h.requestService.CreateRequest(
		c.Request.Context(),
		contractorID,
		amount,
		req.PaymentMethod,
		req.Destination,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, payoutrequest.ErrInsufficientAvailableBalance{}):
			RespondConflict(c, "Requested amount exceeds available balance")
		case errors.Is(err, payoutrequest.ErrInvalidAmount), errors.Is(err, payoutrequest.ErrEmptyPaymentMethod):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create payout request", "contractor_id", contractorID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapRequestToResponse(request))
}

// List retrieves a paginated payout request list with optional status and
// contractor filters, newest first
func (h *PayoutRequestHandler) List(c *gin.Context) {
	var params PayoutRequestListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid payout request filters", "error", err)
		RespondBadRequest(c, "Invalid payout request filters: "+err.Error())
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	var filter payoutrequest.ListFilter
	if params.Status != "" {
		status := shared.RequestStatus(params.Status)
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

	requests, total, err := h.requestService.ListRequests(
		c.Request.Context(),
		filter,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to list payout requests", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PayoutRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, mapRequestToResponse(request))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Approve debits the wallet and settles a PENDING request as COMPLETED. An
// already-reviewed request responds 409; a wallet that can no longer cover
// the amount also responds 409 and the request stays PENDING.
func (h *PayoutRequestHandler) Approve(c *gin.Context) {
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

	request, err := h.requestService.ApproveRequest(c.Request.Context(), id, req.Reviewer, middleware.GetCorrelationID(c))
	if err != nil {
		switch {
		case errors.Is(err, payoutrequest.ErrRequestNotFound{}):
			RespondNotFound(c, "Payout request not found")
		case errors.Is(err, shared.ErrStaleState{}), errors.Is(err, shared.ErrInvalidTransition{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, wallet.ErrInsufficientFunds):
			RespondConflict(c, "Wallet balance no longer covers the requested amount")
		default:
			h.logger.Error("Failed to approve payout request", "request_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapRequestToResponse(request))
}

// Reject releases the reservation and marks a PENDING request REJECTED
func (h *PayoutRequestHandler) Reject(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id")
	if !ok {
		return
	}

	var req RejectPayoutRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request, err := h.requestService.RejectRequest(c.Request.Context(), id, req.Reason, req.Reviewer, middleware.GetCorrelationID(c))
	if err != nil {
		switch {
		case errors.Is(err, payoutrequest.ErrRequestNotFound{}):
			RespondNotFound(c, "Payout request not found")
		case errors.Is(err, shared.ErrStaleState{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, payoutrequest.ErrEmptyRejectionReason):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to reject payout request", "request_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapRequestToResponse(request))
}

// mapRequestToResponse maps a payout request entity to its response DTO
func mapRequestToResponse(r *payoutrequest.Request) PayoutRequestResponse {
	response := PayoutRequestResponse{
		ID:              r.ID.String(),
		ContractorID:    r.ContractorID.String(),
		RequestNumber:   r.RequestNumber,
		Amount:          r.Amount.String(),
		Status:          string(r.Status),
		PaymentMethod:   r.PaymentMethod,
		Destination:     r.Destination,
		RejectionReason: r.RejectionReason,
		ReviewedBy:      r.ReviewedBy,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}

	if r.ReviewedAt != nil {
		response.ReviewedAt = r.ReviewedAt.Format(time.RFC3339)
	}
	if r.LinkedTransactionID != nil {
		response.LinkedTransactionID = r.LinkedTransactionID.String()
	}

	return response
}
