package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusApproved  TransactionStatus = "APPROVED"
	TransactionStatusBorrowed  TransactionStatus = "BORROWED"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// BorrowTransaction is one equipment-type reservation by one member.
// Transactions created from the same request share a BatchID and are
// approved or rejected together.
type BorrowTransaction struct {
	ID               int32             `json:"id"`
	BatchID          uuid.UUID         `json:"batch_id"`
	MemberID         int32             `json:"member_id"`
	EquipmentID      int32             `json:"equipment_id"`
	QuantityBorrowed int32             `json:"quantity_borrowed"`
	TotalReturned    int32             `json:"total_returned"`
	Status           TransactionStatus `json:"status"`
	Purpose          string            `json:"purpose"`
	Location         string            `json:"location"`
	BorrowDate       time.Time         `json:"borrow_date"`
	ExpectedReturn   time.Time         `json:"expected_return_date"`
	ApprovedBy       *int32            `json:"approved_by,omitempty"`
	ApprovedOn       *time.Time        `json:"approved_on,omitempty"`
	ApprovalNotes    string            `json:"approval_notes"`
	// CreditDeducted is the credit reserved for this line at approval time.
	// Invalid on legacy rows approved before the field existed; settlement
	// then falls back to the equipment's current rate and reports a warning.
	CreditDeducted     decimal.NullDecimal `json:"credit_deducted"`
	AccumulatedPenalty decimal.Decimal     `json:"accumulated_penalty"`
	CreatedOn          time.Time           `json:"created_on"`
	UpdatedOn          time.Time           `json:"updated_on"`
}

// Remaining is the quantity still out with the member.
func (t *BorrowTransaction) Remaining() int32 {
	return t.QuantityBorrowed - t.TotalReturned
}

type BorrowedItemStatus string

const (
	BorrowedItemStatusBorrowed BorrowedItemStatus = "BORROWED"
	BorrowedItemStatusReturned BorrowedItemStatus = "RETURNED"
)

// BorrowedItem links a transaction to a specific serialized unit.
// Rows exist only for itemized borrow lines.
type BorrowedItem struct {
	ID                int32              `json:"id"`
	TransactionID     int32              `json:"transaction_id"`
	ItemID            int32              `json:"item_id"`
	Status            BorrowedItemStatus `json:"status"`
	BorrowedDate      time.Time          `json:"borrowed_date"`
	ReturnedDate      *time.Time         `json:"returned_date,omitempty"`
	ConditionOnReturn string             `json:"condition_on_return"`
}

// BorrowLine is one element of an intake request. A line is itemized when
// specific serial units are requested, aggregate when only a quantity is.
// Both shapes flow through the same intake/approval/settlement path.
type BorrowLine struct {
	EquipmentID int32   `json:"equipment_id"`
	Quantity    int32   `json:"quantity,omitempty"`
	ItemIDs     []int32 `json:"item_ids,omitempty"`
}

func (l BorrowLine) Itemized() bool {
	return len(l.ItemIDs) > 0
}

func (l BorrowLine) Count() int32 {
	if l.Itemized() {
		return int32(len(l.ItemIDs))
	}
	return l.Quantity
}

// BorrowRequest is the intake input: one or more lines plus shared dates.
type BorrowRequest struct {
	Lines          []BorrowLine
	BorrowDate     time.Time
	ExpectedReturn time.Time
	Purpose        string
	Location       string
}

// LineError reports a skipped intake line. Intake has partial-success
// semantics: failed lines are collected, the rest proceed.
type LineError struct {
	EquipmentID int32  `json:"equipment_id"`
	Message     string `json:"message"`
}

type BorrowRequestResult struct {
	TransactionIDs []int32     `json:"transactionIds"`
	BatchID        uuid.UUID   `json:"batchId"`
	Errors         []LineError `json:"errors"`
}

type ApprovalResult struct {
	CreditDeducted  decimal.Decimal `json:"creditDeducted"`
	RemainingCredit decimal.Decimal `json:"remainingCredit"`
	ApprovedCount   int32           `json:"approvedCount"`
}
