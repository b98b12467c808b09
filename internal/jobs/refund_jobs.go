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

// ProcessPenaltyRefunds drains every refund schedule whose next refund
// date has arrived, paying out one stage per cycle. Each schedule is
// settled in its own atomic unit so one bad row does not block the rest.
func (jr *JobRunner) ProcessPenaltyRefunds() {
	jr.runWithRecovery("ProcessPenaltyRefunds", func() {
		ctx := context.Background()
		now := time.Now()

		due, err := jr.store.Repos().RefundSchedules.ListDueForUpdate(ctx, now)
		if err != nil {
			logger.Error("Failed to list due refund schedules", "error", err)
			return
		}
		logger.Info("Processing penalty refund schedules", "due", len(due))

		var staged int
		for _, schedule := range due {
			if err := jr.refundStage(ctx, schedule.ID, now); err != nil {
				logger.Error("Failed to process refund schedule",
					"schedule_id", schedule.ID, "member_id", schedule.MemberID, "error", err)
				continue
			}
			staged++
		}
		logger.Info("Penalty refund schedules processed", "staged", staged)
	})
}

func (jr *JobRunner) refundStage(ctx context.Context, scheduleID int32, now time.Time) error {
	var (
		memberID int32
		amount   string
	)
	err := jr.store.WithinTx(ctx, func(r *repository.Repositories) error {
		due, err := r.RefundSchedules.ListDueForUpdate(ctx, now)
		if err != nil {
			return err
		}
		var schedule *domain.PenaltyRefundSchedule
		for i := range due {
			if due[i].ID == scheduleID {
				schedule = &due[i]
				break
			}
		}
		if schedule == nil {
			// Another worker got here first.
			return nil
		}

		member, err := r.Members.GetForUpdate(ctx, schedule.MemberID)
		if err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				// Nobody left to refund. Close the schedule out.
				schedule.IsCompleted = true
				return r.RefundSchedules.Update(ctx, schedule)
			}
			return err
		}

		stage := credit.RefundStage(schedule.TotalPenalty, schedule.RefundedAmount, jr.policy.RefundStages)
		if !stage.IsPositive() {
			schedule.IsCompleted = true
			return r.RefundSchedules.Update(ctx, schedule)
		}

		newBalance := member.Credit.Add(stage)
		if err := r.Members.UpdateCredit(ctx, member.ID, newBalance); err != nil {
			return err
		}
		entry := &domain.CreditLedgerEntry{
			MemberID:      member.ID,
			Amount:        stage,
			Type:          domain.LedgerEntryTypePenalty,
			ReferenceType: domain.ReferenceTypeRefundSchedule,
			ReferenceID:   &schedule.ID,
			Description:   fmt.Sprintf("staged penalty refund (%s of %s)", schedule.RefundedAmount.Add(stage), schedule.TotalPenalty),
			BalanceAfter:  newBalance,
		}
		if err := r.Ledger.Append(ctx, entry); err != nil {
			return err
		}

		schedule.RefundedAmount = schedule.RefundedAmount.Add(stage)
		if schedule.RefundedAmount.GreaterThanOrEqual(schedule.TotalPenalty) {
			schedule.IsCompleted = true
		} else {
			schedule.NextRefundDate = schedule.NextRefundDate.Add(time.Duration(jr.config.Policy.RefundCadenceDays) * 24 * time.Hour)
		}
		if err := r.RefundSchedules.Update(ctx, schedule); err != nil {
			return err
		}

		memberID = member.ID
		amount = stage.String()
		return nil
	})
	if err != nil || memberID == 0 {
		return err
	}

	jr.notifier.Publish(notify.Event{
		Type:     domain.EventRefundStaged,
		MemberID: &memberID,
		Title:    "Penalty refund credited",
		Message:  fmt.Sprintf("A penalty refund of %s has been credited to your account", amount),
	})
	return nil
}
