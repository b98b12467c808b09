package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReturnStatus string

const (
	ReturnStatusReturned      ReturnStatus = "RETURNED"
	ReturnStatusPartialReturn ReturnStatus = "PARTIAL_RETURN"
	ReturnStatusDamaged       ReturnStatus = "DAMAGED"
	ReturnStatusLost          ReturnStatus = "LOST"
)

// ReturnRecord summarizes one settlement call against a transaction.
// A transaction accumulates one record per partial return.
type ReturnRecord struct {
	ID                int32           `json:"id"`
	TransactionID     int32           `json:"transaction_id"`
	QuantityReturned  int32           `json:"quantity_returned"`
	ActualReturnDate  time.Time       `json:"actual_return_date"`
	ReturnStatus      ReturnStatus    `json:"return_status"`
	DaysOverdue       int32           `json:"days_overdue"`
	DamageCost        decimal.Decimal `json:"damage_cost"`
	DamageDescription string          `json:"damage_description"`
	LatePenalty       decimal.Decimal `json:"late_penalty"`
	PartialPenalty    decimal.Decimal `json:"partial_penalty"`
	AdditionalPenalty decimal.Decimal `json:"additional_penalty"`
	TotalPenalty      decimal.Decimal `json:"total_penalty"`
	CreditReturned    decimal.Decimal `json:"credit_returned"`
	CreditDeducted    decimal.Decimal `json:"credit_deducted"`
	NetCreditChange   decimal.Decimal `json:"net_credit_change"`
	Notes             string          `json:"notes"`
	CreatedOn         time.Time       `json:"created_on"`
}

// PenaltyRefundSchedule stages the deferred refund of time-buffer
// penalties after a qualifying full return. One incomplete schedule per
// member; new penalties accumulate onto it rather than overwrite.
type PenaltyRefundSchedule struct {
	ID             int32           `json:"id"`
	MemberID       int32           `json:"member_id"`
	TransactionID  int32           `json:"transaction_id"`
	TotalPenalty   decimal.Decimal `json:"total_penalty"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	NextRefundDate time.Time       `json:"next_refund_date"`
	IsCompleted    bool            `json:"is_completed"`
	CreatedOn      time.Time       `json:"created_on"`
	UpdatedOn      time.Time       `json:"updated_on"`
}

// ReturnRequest is the settlement input. Either Quantity or ItemIDs is
// set, mirroring the borrow line shape.
type ReturnRequest struct {
	Quantity          int32
	ItemIDs           []int32
	ActualReturnDate  time.Time
	Notes             string
	DamageCost        decimal.Decimal
	DamageDescription string
	AdditionalPenalty decimal.Decimal
}

type PenaltyBreakdown struct {
	LatePenalty       decimal.Decimal `json:"late_penalty"`
	PartialPenalty    decimal.Decimal `json:"partial_penalty"`
	DamageCost        decimal.Decimal `json:"damage_cost"`
	AdditionalPenalty decimal.Decimal `json:"additional_penalty"`
	Total             decimal.Decimal `json:"total"`
}

type CreditBreakdown struct {
	Returned  decimal.Decimal `json:"returned"`
	Deducted  decimal.Decimal `json:"deducted"`
	NetChange decimal.Decimal `json:"net_change"`
}

type SettlementResult struct {
	ReturnStatus     ReturnStatus     `json:"return_status"`
	QuantityReturned int32            `json:"quantity_returned"`
	TotalReturned    int32            `json:"total_returned"`
	IsFullyReturned  bool             `json:"is_fully_returned"`
	DaysOverdue      int32            `json:"days_overdue"`
	Penalties        PenaltyBreakdown `json:"penalties"`
	Credits          CreditBreakdown  `json:"credits"`
	// CreditWarning flags financially ambiguous settlements (legacy rows
	// without a credit snapshot, or a deleted member) instead of guessing
	// silently.
	CreditWarning string `json:"credit_warning,omitempty"`
}
