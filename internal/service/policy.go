package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/config"
)

// PolicyFromConfig parses the credit amounts out of their config
// strings. Amounts are strings in YAML so they survive as exact
// decimals rather than binary floats.
func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	penaltyPerHour, err := decimal.NewFromString(cfg.Credit.PenaltyPerHour)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid credit.penalty_per_hour %q: %w", cfg.Credit.PenaltyPerHour, err)
	}
	maxRefund, err := decimal.NewFromString(cfg.Credit.MaxRefundPerReturn)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid credit.max_refund_per_return %q: %w", cfg.Credit.MaxRefundPerReturn, err)
	}
	return Policy{
		PenaltyPerHour:     penaltyPerHour,
		MaxRefundPerReturn: maxRefund,
		MaxBorrowDays:      int32(cfg.Policy.MaxBorrowDays),
		LostThresholdDays:  int32(cfg.Policy.LostThresholdDays),
		RefundCadenceDays:  int32(cfg.Policy.RefundCadenceDays),
		RefundStages:       int32(cfg.Policy.RefundStages),
	}, nil
}
