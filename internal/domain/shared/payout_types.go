package shared

// EntryKind defines the two directions a ledger entry can move money
type EntryKind string

const (
	EntryKindCredit EntryKind = "CREDIT"
	EntryKindDebit  EntryKind = "DEBIT"
)

// EntryStatus defines ledger entry settlement states
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusCompleted EntryStatus = "COMPLETED"
	EntryStatusFailed    EntryStatus = "FAILED"
	EntryStatusCancelled EntryStatus = "CANCELLED"
)

// EligibilityStatus defines the payout eligibility state machine states
type EligibilityStatus string

const (
	EligibilityStatusReady      EligibilityStatus = "READY"
	EligibilityStatusProcessing EligibilityStatus = "PROCESSING"
	EligibilityStatusPaid       EligibilityStatus = "PAID"
	EligibilityStatusOnHold     EligibilityStatus = "ON_HOLD"
)

// RequestStatus defines the payout request state machine states
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
)

// ReferenceKind identifies the record that originated a ledger entry
type ReferenceKind string

const (
	ReferenceKindEligibility   ReferenceKind = "ELIGIBILITY"
	ReferenceKindPayoutRequest ReferenceKind = "PAYOUT_REQUEST"
)

// AuditOutboxStatus defines audit event publishing states
type AuditOutboxStatus string

const (
	AuditOutboxStatusPending         AuditOutboxStatus = "PENDING"
	AuditOutboxStatusProcessed       AuditOutboxStatus = "PROCESSED"
	AuditOutboxStatusFailedToPublish AuditOutboxStatus = "FAILED_TO_PUBLISH"
)
