package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/service"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
)

// WalletHandler handles HTTP requests for wallet reads
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// GetByContractorID retrieves a contractor's wallet snapshot. Contractors
// without payout history get an all-zero snapshot.
func (h *WalletHandler) GetByContractorID(c *gin.Context) {
	contractorID, ok := parseUUIDParam(c, h.logger, "contractor_id")
	if !ok {
		return
	}

	w, err := h.walletService.GetWalletByContractorID(c.Request.Context(), contractorID)
	if err != nil {
		h.logger.Error("Failed to get wallet", "contractor_id", contractorID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapWalletToResponse(w))
}

// GetTransactions retrieves a contractor's paginated transaction history,
// newest first, with optional kind and date range filters
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	contractorID, ok := parseUUIDParam(c, h.logger, "contractor_id")
	if !ok {
		return
	}

	var params TransactionHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid history filters", "error", err)
		RespondBadRequest(c, "Invalid history filters: "+err.Error())
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	filter, err := buildHistoryFilter(params)
	if err != nil {
		h.logger.Error("Invalid history filters", "error", err)
		RespondBadRequest(c, err.Error())
		return
	}

	entries, total, err := h.walletService.GetTransactions(
		c.Request.Context(),
		contractorID,
		filter,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get transactions", "contractor_id", contractorID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	transactions := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

// GetReconciliation rebuilds the contractor's balance from the ledger and
// reports whether it matches the cached wallet
func (h *WalletHandler) GetReconciliation(c *gin.Context) {
	contractorID, ok := parseUUIDParam(c, h.logger, "contractor_id")
	if !ok {
		return
	}

	report, err := h.walletService.Reconcile(c.Request.Context(), contractorID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to reconcile wallet", "contractor_id", contractorID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapReportToResponse(report))
}

// buildHistoryFilter converts bound query params into a ledger history filter
func buildHistoryFilter(params TransactionHistoryParams) (ledger.HistoryFilter, error) {
	var filter ledger.HistoryFilter

	if params.Kind != "" {
		kind := shared.EntryKind(params.Kind)
		filter.Kind = &kind
	}

	if params.From != "" {
		from, err := time.Parse(time.RFC3339, params.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}

	if params.To != "" {
		to, err := time.Parse(time.RFC3339, params.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}

	return filter, nil
}

// parseUUIDParam parses a UUID path parameter, responding 400 on failure
func parseUUIDParam(c *gin.Context, logger *slog.Logger, name string) (uuid.UUID, bool) {
	param := c.Param(name)
	id, err := uuid.Parse(param)
	if err != nil {
		logger.Error("Invalid "+name, name, param, "error", err)
		RespondBadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// mapWalletToResponse maps a wallet entity to a wallet response DTO
func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	response := WalletResponse{
		ContractorID:   w.ContractorID.String(),
		Balance:        w.Balance.String(),
		TotalEarned:    w.TotalEarned.String(),
		TotalWithdrawn: w.TotalWithdrawn.String(),
		PendingAmount:  w.PendingAmount.String(),
		Available:      w.Available().String(),
	}

	if w.ID != uuid.Nil {
		response.ID = w.ID.String()
		response.CreatedAt = w.CreatedAt.Format(time.RFC3339)
		response.UpdatedAt = w.UpdatedAt.Format(time.RFC3339)
	}

	return response
}

// mapEntryToResponse maps a ledger entry to a transaction response DTO
func mapEntryToResponse(entry *ledger.Entry) TransactionResponse {
	response := TransactionResponse{
		ID:            entry.ID.String(),
		WalletID:      entry.WalletID.String(),
		Kind:          string(entry.Kind),
		Amount:        entry.Amount.String(),
		BalanceAfter:  entry.BalanceAfter.String(),
		Status:        string(entry.Status),
		Description:   entry.Description,
		ReferenceKind: string(entry.ReferenceKind),
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}

	if entry.ReferenceID != nil {
		response.ReferenceID = entry.ReferenceID.String()
	}

	return response
}

// mapReportToResponse maps a reconciliation report to its response DTO
func mapReportToResponse(report *orchestrator.ReconciliationReport) ReconciliationResponse {
	response := ReconciliationResponse{
		ContractorID:       report.ContractorID.String(),
		CachedBalance:      report.CachedBalance.String(),
		LedgerBalance:      report.LedgerBalance.String(),
		Difference:         report.Difference.String(),
		LifetimeConsistent: report.LifetimeConsistent,
		Consistent:         report.Consistent,
	}

	if report.WalletID != uuid.Nil {
		response.WalletID = report.WalletID.String()
	}
	if report.LastEntryBalance != nil {
		response.LastEntryBalance = report.LastEntryBalance.String()
	}

	return response
}
