package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/credit"
	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository"
)

// SettleReturn records a full or partial return against an approved
// loan and applies the credit consequences: principal refund for the
// returned units, then late, accumulated, damage and additional
// penalties, each as its own ledger entry. The whole call is one atomic
// unit; the summary ReturnRecord is written inside it.
//
// Time-buffer penalties (late hours, accumulated shortfall) are charged
// at full return and staged for refund later. Damage and additional
// penalties are punitive and never refunded.
func (s *borrowService) SettleReturn(ctx context.Context, actorID, transactionID int32, req *domain.ReturnRequest) (*domain.SettlementResult, error) {
	if err := validateReturnRequest(req); err != nil {
		return nil, err
	}
	qty := returnQuantity(req)

	var (
		result    *domain.SettlementResult
		memberID  int32
		histories []domain.ItemHistoryEntry
	)

	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		t, err := r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if t.Status != domain.TransactionStatusApproved && t.Status != domain.TransactionStatusBorrowed {
			return domain.Ef(domain.KindConflict, "transaction %d is not out on loan (status %s)", t.ID, t.Status)
		}
		if qty > t.Remaining() {
			return domain.Ef(domain.KindValidation, "cannot return %d units, only %d outstanding", qty, t.Remaining())
		}
		memberID = t.MemberID

		hoursOverdue := credit.HoursOverdue(t.ExpectedReturn, req.ActualReturnDate)
		daysOverdue := credit.DaysOverdue(t.ExpectedReturn, req.ActualReturnDate)
		fullyReturned := t.TotalReturned+qty == t.QuantityBorrowed

		// Member lock comes before the equipment lock, same order as
		// approval. A deleted member skips every credit mutation but the
		// inventory side of the settlement still completes.
		var member *domain.Member
		warning := ""
		member, err = r.Members.GetForUpdate(ctx, t.MemberID)
		if err != nil {
			if !domain.IsKind(err, domain.KindNotFound) {
				return err
			}
			member = nil
			warning = "member no longer exists; inventory settled without credit mutations"
		}

		eq, err := r.Equipment.GetForUpdate(ctx, t.EquipmentID)
		if err != nil {
			return err
		}

		// Principal refund for the returned units. The final portion is
		// settled as the exact remainder of the approval deduction so the
		// per-return rounding never leaks.
		var refund decimal.Decimal
		switch {
		case !t.CreditDeducted.Valid:
			refund = eq.CreditPerUnit.Mul(decimal.NewFromInt32(qty))
			if warning == "" {
				warning = "approval-time credit snapshot missing; refund approximated from the current equipment rate"
			}
		case fullyReturned:
			already, err := r.Returns.SumCreditReturned(ctx, t.ID)
			if err != nil {
				return err
			}
			refund = t.CreditDeducted.Decimal.Sub(already)
			if refund.IsNegative() {
				refund = decimal.Zero
			}
		default:
			refund = credit.PerItemCredit(t.CreditDeducted.Decimal, t.QuantityBorrowed).Mul(decimal.NewFromInt32(qty))
		}
		refund = credit.ClampRefund(refund, s.policy.MaxRefundPerReturn)

		// Penalty buckets. Late and accumulated penalties apply only once
		// the loan is fully back; damage and additional apply on any call.
		var latePenalty, partialPenalty decimal.Decimal
		if fullyReturned {
			latePenalty = credit.LatePenalty(hoursOverdue, s.policy.PenaltyPerHour)
			if t.AccumulatedPenalty.IsPositive() {
				partialPenalty = t.AccumulatedPenalty
			}
		}
		damageCost := req.DamageCost
		additional := req.AdditionalPenalty

		balance := decimal.Zero
		if member != nil {
			balance = member.Credit
		}
		var returned, deducted decimal.Decimal

		apply := func(amount decimal.Decimal, entryType domain.LedgerEntryType, desc string, refundable bool) error {
			if member == nil || !amount.IsPositive() {
				return nil
			}
			signed := amount
			if entryType == domain.LedgerEntryTypePenalty {
				signed = credit.ClampDeduction(balance, amount)
				if !signed.IsPositive() {
					return nil
				}
				deducted = deducted.Add(signed)
				balance = balance.Sub(signed)
				signed = signed.Neg()
			} else {
				returned = returned.Add(amount)
				balance = balance.Add(amount)
			}
			if err := r.Members.UpdateCredit(ctx, member.ID, balance); err != nil {
				return err
			}
			entry := &domain.CreditLedgerEntry{
				MemberID:      member.ID,
				Amount:        signed,
				Type:          entryType,
				ReferenceType: domain.ReferenceTypeTransaction,
				ReferenceID:   &transactionID,
				Description:   desc,
				BalanceAfter:  balance,
				ActorID:       &actorID,
			}
			if err := r.Ledger.Append(ctx, entry); err != nil {
				return err
			}
			if refundable {
				first := req.ActualReturnDate.Add(time.Duration(s.policy.RefundCadenceDays) * 24 * time.Hour)
				return r.RefundSchedules.Accumulate(ctx, member.ID, t.ID, signed.Neg(), first)
			}
			return nil
		}

		if err := apply(refund, domain.LedgerEntryTypeReturn,
			fmt.Sprintf("return of %d x %s", qty, eq.Name), false); err != nil {
			return err
		}
		if err := apply(partialPenalty, domain.LedgerEntryTypePenalty,
			fmt.Sprintf("accumulated shortfall penalty for %s", eq.Name), true); err != nil {
			return err
		}
		if err := apply(latePenalty, domain.LedgerEntryTypePenalty,
			fmt.Sprintf("late return penalty: %d hour(s) overdue", hoursOverdue), true); err != nil {
			return err
		}
		if err := apply(damageCost, domain.LedgerEntryTypePenalty,
			damageDescription(req), false); err != nil {
			return err
		}
		if err := apply(additional, domain.LedgerEntryTypePenalty,
			"additional penalty: "+req.Notes, false); err != nil {
			return err
		}

		damaged := req.DamageCost.IsPositive()
		itemIDs, err := settleUnits(ctx, r, t, req, qty, damaged)
		if err != nil {
			return err
		}
		for _, itemID := range itemIDs {
			action := "returned"
			if damaged {
				action = "returned_damaged"
			}
			histories = append(histories, domain.ItemHistoryEntry{
				ItemID:        itemID,
				Action:        action,
				ActorID:       &actorID,
				TransactionID: &t.ID,
				Note:          req.Notes,
			})
		}
		if _, err := r.Equipment.RecomputeQuantity(ctx, t.EquipmentID); err != nil {
			return err
		}

		t.TotalReturned += qty
		if fullyReturned {
			t.Status = domain.TransactionStatusCompleted
			t.AccumulatedPenalty = decimal.Zero
		} else {
			t.Status = domain.TransactionStatusBorrowed
		}
		if err := r.Transactions.Update(ctx, t); err != nil {
			return err
		}

		status := returnStatus(fullyReturned, damaged, daysOverdue, s.policy.LostThresholdDays)
		totalPenalty := latePenalty.Add(partialPenalty).Add(damageCost).Add(additional)
		record := &domain.ReturnRecord{
			TransactionID:     t.ID,
			QuantityReturned:  qty,
			ActualReturnDate:  req.ActualReturnDate,
			ReturnStatus:      status,
			DaysOverdue:       daysOverdue,
			DamageCost:        damageCost,
			DamageDescription: req.DamageDescription,
			LatePenalty:       latePenalty,
			PartialPenalty:    partialPenalty,
			AdditionalPenalty: additional,
			TotalPenalty:      totalPenalty,
			CreditReturned:    returned,
			CreditDeducted:    deducted,
			NetCreditChange:   returned.Sub(deducted),
			Notes:             req.Notes,
		}
		if err := r.Returns.Create(ctx, record); err != nil {
			return err
		}

		result = &domain.SettlementResult{
			ReturnStatus:     status,
			QuantityReturned: qty,
			TotalReturned:    t.TotalReturned,
			IsFullyReturned:  fullyReturned,
			DaysOverdue:      daysOverdue,
			Penalties: domain.PenaltyBreakdown{
				LatePenalty:       latePenalty,
				PartialPenalty:    partialPenalty,
				DamageCost:        damageCost,
				AdditionalPenalty: additional,
				Total:             totalPenalty,
			},
			Credits: domain.CreditBreakdown{
				Returned:  returned,
				Deducted:  deducted,
				NetChange: returned.Sub(deducted),
			},
			CreditWarning: warning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notify.Event{
		Type:     domain.EventReturnSettled,
		MemberID: &memberID,
		Title:    "Return settled",
		Message: fmt.Sprintf("%d unit(s) returned (%s), net credit change %s",
			result.QuantityReturned, result.ReturnStatus, result.Credits.NetChange),
		Attributes: map[string]string{
			"transaction_id": fmt.Sprintf("%d", transactionID),
		},
	})
	for _, h := range histories {
		s.notifier.PublishHistory(h)
	}
	return result, nil
}

// settleUnits flips the physical units back. Itemized loans close their
// earmark rows; aggregate loans pick any borrowed units of the
// equipment. Damaged units go to maintenance instead of the shelf.
func settleUnits(ctx context.Context, r *repository.Repositories, t *domain.BorrowTransaction, req *domain.ReturnRequest, qty int32, damaged bool) ([]int32, error) {
	target := domain.ItemStatusAvailable
	if damaged {
		target = domain.ItemStatusMaintenance
	}

	open, err := r.Transactions.ListOpenBorrowedItemsForUpdate(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	var toClose []domain.BorrowedItem
	switch {
	case len(req.ItemIDs) > 0:
		byItem := make(map[int32]domain.BorrowedItem, len(open))
		for _, bi := range open {
			byItem[bi.ItemID] = bi
		}
		for _, itemID := range req.ItemIDs {
			bi, ok := byItem[itemID]
			if !ok {
				return nil, domain.Ef(domain.KindValidation, "item %d is not out under this transaction", itemID)
			}
			toClose = append(toClose, bi)
		}
	case len(open) > 0:
		if int32(len(open)) < qty {
			return nil, domain.Ef(domain.KindConflict, "transaction %d has only %d open item(s)", t.ID, len(open))
		}
		toClose = open[:qty]
	default:
		// Aggregate loan, no per-unit linkage: release any borrowed units
		// of this equipment under the lock already held.
		items, err := r.Equipment.PickBorrowedForUpdate(ctx, t.EquipmentID, qty)
		if err != nil {
			return nil, err
		}
		if int32(len(items)) < qty {
			return nil, domain.Ef(domain.KindConflict, "only %d borrowed unit(s) found for equipment %d", len(items), t.EquipmentID)
		}
		itemIDs := make([]int32, 0, len(items))
		for _, item := range items {
			if err := r.Equipment.UpdateItemStatus(ctx, item.ID, target); err != nil {
				return nil, err
			}
			itemIDs = append(itemIDs, item.ID)
		}
		return itemIDs, nil
	}

	itemIDs := make([]int32, 0, len(toClose))
	for i := range toClose {
		bi := toClose[i]
		bi.Status = domain.BorrowedItemStatusReturned
		bi.ReturnedDate = &req.ActualReturnDate
		bi.ConditionOnReturn = req.DamageDescription
		if err := r.Transactions.UpdateBorrowedItem(ctx, &bi); err != nil {
			return nil, err
		}
		if err := r.Equipment.UpdateItemStatus(ctx, bi.ItemID, target); err != nil {
			return nil, err
		}
		itemIDs = append(itemIDs, bi.ItemID)
	}
	return itemIDs, nil
}

// returnStatus classifies a settlement. Later conditions override
// earlier ones: a damaged return reports DAMAGED even when partial, and
// crossing the lost threshold overrides everything.
func returnStatus(fullyReturned, damaged bool, daysOverdue, lostThreshold int32) domain.ReturnStatus {
	status := domain.ReturnStatusReturned
	if !fullyReturned {
		status = domain.ReturnStatusPartialReturn
	}
	if damaged {
		status = domain.ReturnStatusDamaged
	}
	if lostThreshold > 0 && daysOverdue >= lostThreshold {
		status = domain.ReturnStatusLost
	}
	return status
}

func returnQuantity(req *domain.ReturnRequest) int32 {
	if len(req.ItemIDs) > 0 {
		return int32(len(req.ItemIDs))
	}
	return req.Quantity
}

func damageDescription(req *domain.ReturnRequest) string {
	if req.DamageDescription != "" {
		return "damage cost: " + req.DamageDescription
	}
	return "damage cost"
}

func validateReturnRequest(req *domain.ReturnRequest) error {
	if req == nil {
		return domain.E(domain.KindValidation, "return request is required")
	}
	if returnQuantity(req) <= 0 {
		return domain.E(domain.KindValidation, "return quantity must be positive")
	}
	if req.ActualReturnDate.IsZero() {
		return domain.E(domain.KindValidation, "actual return date is required")
	}
	seen := make(map[int32]struct{}, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if _, ok := seen[id]; ok {
			return domain.Ef(domain.KindValidation, "item %d listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	if req.DamageCost.IsNegative() {
		return domain.E(domain.KindValidation, "damage cost cannot be negative")
	}
	if req.AdditionalPenalty.IsNegative() {
		return domain.E(domain.KindValidation, "additional penalty cannot be negative")
	}
	return nil
}
