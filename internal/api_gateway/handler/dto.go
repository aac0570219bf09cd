package handler

// WalletResponse represents a contractor wallet snapshot in API responses
type WalletResponse struct {
	ID             string `json:"id,omitempty"`
	ContractorID   string `json:"contractor_id"`
	Balance        string `json:"balance"`
	TotalEarned    string `json:"total_earned"`
	TotalWithdrawn string `json:"total_withdrawn"`
	PendingAmount  string `json:"pending_amount"`
	Available      string `json:"available"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID            string `json:"id"`
	WalletID      string `json:"wallet_id"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
	Status        string `json:"status"`
	Description   string `json:"description,omitempty"`
	ReferenceKind string `json:"reference_kind,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// TransactionHistoryParams represents query filters for transaction history
type TransactionHistoryParams struct {
	Kind string `form:"kind" binding:"omitempty,oneof=CREDIT DEBIT"`
	From string `form:"from" binding:"omitempty"`
	To   string `form:"to" binding:"omitempty"`
}

// ReconciliationResponse represents a wallet reconciliation report
type ReconciliationResponse struct {
	WalletID           string `json:"wallet_id,omitempty"`
	ContractorID       string `json:"contractor_id"`
	CachedBalance      string `json:"cached_balance"`
	LedgerBalance      string `json:"ledger_balance"`
	Difference         string `json:"difference"`
	LastEntryBalance   string `json:"last_entry_balance,omitempty"`
	LifetimeConsistent bool   `json:"lifetime_consistent"`
	Consistent         bool   `json:"consistent"`
}

// EligibilityResponse represents a payout eligibility in API responses
type EligibilityResponse struct {
	ID                  string `json:"id"`
	JobID               string `json:"job_id"`
	ContractorID        string `json:"contractor_id"`
	Amount              string `json:"amount"`
	Status              string `json:"status"`
	VerifiedAt          string `json:"verified_at"`
	LinkedTransactionID string `json:"linked_transaction_id,omitempty"`
	Notes               string `json:"notes,omitempty"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// EligibilityListParams represents query filters for the eligibility list
type EligibilityListParams struct {
	Status       string `form:"status" binding:"omitempty,oneof=READY PROCESSING PAID ON_HOLD"`
	ContractorID string `form:"contractor_id" binding:"omitempty,uuid"`
}

// ReviewActionRequest carries the reviewer identity for approve/release actions
type ReviewActionRequest struct {
	Reviewer string `json:"reviewer" binding:"required"`
}

// HoldEligibilityRequest represents a request to put an eligibility on hold
type HoldEligibilityRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Reviewer string `json:"reviewer" binding:"required"`
}

// BulkApproveRequest represents a request to approve several eligibilities
type BulkApproveRequest struct {
	IDs      []string `json:"ids" binding:"required,min=1,dive,uuid"`
	Reviewer string   `json:"reviewer" binding:"required"`
}

// BulkApproveResponse reports per-item outcomes of a bulk approval together
// with aggregate counts and the total amount credited
type BulkApproveResponse struct {
	Requested     int               `json:"requested"`
	ApprovedCount int               `json:"approved_count"`
	FailedCount   int               `json:"failed_count"`
	TotalCredited string            `json:"total_credited"`
	Approved      []string          `json:"approved"`
	Failed        []BulkItemFailure `json:"failed"`
}

// BulkItemFailure describes one eligibility that could not be approved
type BulkItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// CreatePayoutRequestRequest represents a request to file a withdrawal
type CreatePayoutRequestRequest struct {
	ContractorID  string `json:"contractor_id" binding:"required,uuid"`
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
}

// PayoutRequestResponse represents a payout request in API responses
type PayoutRequestResponse struct {
	ID                  string `json:"id"`
	ContractorID        string `json:"contractor_id"`
	RequestNumber       string `json:"request_number"`
	Amount              string `json:"amount"`
	Status              string `json:"status"`
	PaymentMethod       string `json:"payment_method"`
	Destination         string `json:"destination,omitempty"`
	RejectionReason     string `json:"rejection_reason,omitempty"`
	ReviewedBy          string `json:"reviewed_by,omitempty"`
	ReviewedAt          string `json:"reviewed_at,omitempty"`
	LinkedTransactionID string `json:"linked_transaction_id,omitempty"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// PayoutRequestListParams represents query filters for the request list
type PayoutRequestListParams struct {
	Status       string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED COMPLETED"`
	ContractorID string `form:"contractor_id" binding:"omitempty,uuid"`
}

// RejectPayoutRequestRequest represents a request to reject a withdrawal
type RejectPayoutRequestRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Reviewer string `json:"reviewer" binding:"required"`
}

// TransitionResponse represents one audit trail transition in API responses
type TransitionResponse struct {
	EventID       string `json:"event_id"`
	EntityKind    string `json:"entity_kind"`
	EntityID      string `json:"entity_id"`
	ContractorID  string `json:"contractor_id"`
	FromStatus    string `json:"from_status,omitempty"`
	ToStatus      string `json:"to_status"`
	Amount        string `json:"amount"`
	Actor         string `json:"actor,omitempty"`
	Reason        string `json:"reason,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
