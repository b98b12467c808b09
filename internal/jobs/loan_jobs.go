package jobs

import (
	"context"
	"fmt"
	"time"

	"equiplend-backend/internal/credit"
	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/logger"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository"
)

// MarkOverdueLoans scans active loans past their expected return date
// and emits overdue reminders. When auto_mark_lost is enabled, loans
// past the lost threshold get their outstanding units marked LOST so
// they stop counting as borrowed inventory.
func (jr *JobRunner) MarkOverdueLoans() {
	jr.runWithRecovery("MarkOverdueLoans", func() {
		ctx := context.Background()
		now := time.Now()

		overdue, err := jr.store.Repos().Transactions.ListOverdue(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}
		logger.Info("Scanning overdue loans", "count", len(overdue))

		for _, t := range overdue {
			daysOverdue := credit.DaysOverdue(t.ExpectedReturn, now)
			logger.Debug("Loan overdue",
				"transaction_id", t.ID,
				"member_id", t.MemberID,
				"equipment_id", t.EquipmentID,
				"days_overdue", daysOverdue)

			memberID := t.MemberID
			jr.notifier.Publish(notify.Event{
				Type:     domain.EventLoanOverdue,
				MemberID: &memberID,
				Title:    "Equipment overdue",
				Message: fmt.Sprintf("%d unit(s) are %d day(s) overdue; late penalties accrue hourly",
					t.Remaining(), daysOverdue),
				Attributes: map[string]string{
					"transaction_id": fmt.Sprintf("%d", t.ID),
				},
			})

			if jr.config.Policy.AutoMarkLost && daysOverdue >= jr.policy.LostThresholdDays {
				if err := jr.markUnitsLost(ctx, t.ID); err != nil {
					logger.Error("Failed to mark units lost", "transaction_id", t.ID, "error", err)
				}
			}
		}
	})
}

// markUnitsLost flips a loan's outstanding units to LOST. No credit
// mutation happens here; the financial side is settled if and when the
// units reappear.
func (jr *JobRunner) markUnitsLost(ctx context.Context, transactionID int32) error {
	return jr.store.WithinTx(ctx, func(r *repository.Repositories) error {
		t, err := r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if t.Status != domain.TransactionStatusApproved && t.Status != domain.TransactionStatusBorrowed {
			return nil
		}

		open, err := r.Transactions.ListOpenBorrowedItemsForUpdate(ctx, t.ID)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			for _, bi := range open {
				if err := r.Equipment.UpdateItemStatus(ctx, bi.ItemID, domain.ItemStatusLost); err != nil {
					return err
				}
			}
		} else {
			items, err := r.Equipment.PickBorrowedForUpdate(ctx, t.EquipmentID, t.Remaining())
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := r.Equipment.UpdateItemStatus(ctx, item.ID, domain.ItemStatusLost); err != nil {
					return err
				}
			}
		}
		_, err = r.Equipment.RecomputeQuantity(ctx, t.EquipmentID)
		return err
	})
}
