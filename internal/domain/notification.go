package domain

import "time"

// Notification event types emitted by the lending core. Delivery is
// best-effort and happens after commit; it is never part of the
// consistency boundary.
const (
	EventRequestCreated   = "request.created"
	EventRequestApproved  = "request.approved"
	EventRequestRejected  = "request.rejected"
	EventRequestCancelled = "request.cancelled"
	EventReturnSettled    = "return.settled"
	EventRefundStaged     = "refund.staged"
	EventLoanOverdue      = "loan.overdue"
)

type Notification struct {
	ID         int32             `json:"id"`
	MemberID   *int32            `json:"member_id,omitempty"` // nil = staff broadcast
	EventType  string            `json:"event_type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	IsRead     bool              `json:"is_read"`
	CreatedOn  time.Time         `json:"created_on"`
}

// ItemHistoryEntry is one best-effort audit line for a serialized unit.
type ItemHistoryEntry struct {
	ID            int32     `json:"id"`
	ItemID        int32     `json:"item_id"`
	Action        string    `json:"action"`
	ActorID       *int32    `json:"actor_id,omitempty"`
	TransactionID *int32    `json:"transaction_id,omitempty"`
	Note          string    `json:"note"`
	CreatedOn     time.Time `json:"created_on"`
}
