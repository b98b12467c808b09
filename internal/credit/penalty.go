// Package credit holds the pure arithmetic of the lending ledger:
// overdue measurement, penalty computation, per-item credit splits and
// the policy clamps. Everything here is deterministic and side-effect
// free; persistence and locking live in the service layer.
package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// perItemScale bounds the precision of a per-item credit split. The
// final portion of a full return is settled as a remainder, so the sum
// of refunds always reconciles with the approval deduction exactly.
const perItemScale = 4

// HoursOverdue returns the whole hours between the expected and actual
// return, rounded up. Never negative: early returns are simply on time.
func HoursOverdue(expected, actual time.Time) int32 {
	if !actual.After(expected) {
		return 0
	}
	d := actual.Sub(expected)
	hours := d / time.Hour
	if d%time.Hour > 0 {
		hours++
	}
	return int32(hours)
}

// DaysOverdue is derived for display and the lost-threshold check only.
// All monetary penalty math uses hours.
func DaysOverdue(expected, actual time.Time) int32 {
	hours := HoursOverdue(expected, actual)
	days := hours / 24
	if hours%24 > 0 {
		days++
	}
	return days
}

// LatePenalty is ceil(hoursOverdue * ratePerHour).
func LatePenalty(hoursOverdue int32, ratePerHour decimal.Decimal) decimal.Decimal {
	if hoursOverdue <= 0 || !ratePerHour.IsPositive() {
		return decimal.Zero
	}
	return ratePerHour.Mul(decimal.NewFromInt32(hoursOverdue)).Ceil()
}

// PerItemCredit splits the credit reserved at approval across the
// borrowed quantity.
func PerItemCredit(creditDeducted decimal.Decimal, quantityBorrowed int32) decimal.Decimal {
	if quantityBorrowed <= 0 {
		return decimal.Zero
	}
	return creditDeducted.DivRound(decimal.NewFromInt32(quantityBorrowed), perItemScale)
}

// ClampRefund caps a single refund at the policy ceiling.
func ClampRefund(amount, ceiling decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if ceiling.IsPositive() && amount.GreaterThan(ceiling) {
		return ceiling
	}
	return amount
}

// ClampDeduction bounds a penalty deduction so that it never drives the
// balance below zero. A balance that is already non-positive absorbs
// nothing: only approval-time debt may push credit negative.
func ClampDeduction(balance, amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if !balance.IsPositive() {
		return decimal.Zero
	}
	if amount.GreaterThan(balance) {
		return balance
	}
	return amount
}

// RefundStage is the amount one staged-refund cycle pays out:
// ceil(total/stages), clamped to what is still owed.
func RefundStage(total, refunded decimal.Decimal, stages int32) decimal.Decimal {
	remaining := total.Sub(refunded)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	if stages <= 1 {
		return remaining
	}
	stage := total.DivRound(decimal.NewFromInt32(stages), perItemScale).Ceil()
	if stage.GreaterThan(remaining) {
		return remaining
	}
	return stage
}
