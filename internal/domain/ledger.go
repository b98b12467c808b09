package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerEntryType string

const (
	LedgerEntryTypeBorrow  LedgerEntryType = "borrow"
	LedgerEntryTypeReturn  LedgerEntryType = "return"
	LedgerEntryTypePenalty LedgerEntryType = "penalty"
)

const (
	ReferenceTypeTransaction    = "transaction"
	ReferenceTypeRefundSchedule = "refund_schedule"
)

// CreditLedgerEntry is one immutable credit mutation. Entries are
// append-only; corrections are new entries, never edits. BalanceAfter is
// the member's running balance snapshotted under the lock held during
// the mutation.
type CreditLedgerEntry struct {
	ID            int32           `json:"id"`
	MemberID      int32           `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"` // positive credit, negative debit
	Type          LedgerEntryType `json:"type"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   *int32          `json:"reference_id,omitempty"`
	Description   string          `json:"description"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ActorID       *int32          `json:"actor_id,omitempty"`
	CreatedOn     time.Time       `json:"created_on"`
}

type LedgerSummary struct {
	Balance         decimal.Decimal  `json:"balance"`
	ActiveLoans     int32            `json:"active_loans"`
	PendingRequests int32            `json:"pending_requests"`
	StatusCount     map[string]int32 `json:"status_count"`
}
