package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/handler"
	"github.com/tradeworks-payout-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	eligibilityHandler *handler.EligibilityHandler,
	payoutRequestHandler *handler.PayoutRequestHandler,
	auditHandler *handler.AuditHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Wallet reads
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:contractor_id", walletHandler.GetByContractorID)
			wallets.GET("/:contractor_id/transactions", walletHandler.GetTransactions)
			wallets.GET("/:contractor_id/reconciliation", walletHandler.GetReconciliation)
		}

		// Payout eligibility operations
		eligibilities := v1.Group("/eligibilities")
		{
			eligibilities.GET("", eligibilityHandler.List)
			eligibilities.POST("/bulk-approve", eligibilityHandler.BulkApprove)
			eligibilities.POST("/:id/approve", eligibilityHandler.Approve)
			eligibilities.POST("/:id/hold", eligibilityHandler.Hold)
			eligibilities.POST("/:id/release", eligibilityHandler.Release)
		}

		// Payout request operations
		payoutRequests := v1.Group("/payout-requests")
		{
			payoutRequests.POST("", payoutRequestHandler.Create)
			payoutRequests.GET("", payoutRequestHandler.List)
			payoutRequests.POST("/:id/approve", payoutRequestHandler.Approve)
			payoutRequests.POST("/:id/reject", payoutRequestHandler.Reject)
		}

		// Audit trail reads
		v1.GET("/audit/:entity_id", auditHandler.GetByEntityID)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
