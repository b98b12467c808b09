package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository"
)

// Approve reserves equipment and deducts credit for a transaction and
// every pending sibling in its batch, atomically: either the whole
// batch is approved and the member is charged once for the batch total,
// or nothing changes.
//
// Lock order is fixed across all call sites: the anchor transaction row,
// the member's credit row, then equipment rows ascending by equipment
// id. A transaction that is no longer PENDING fails with a conflict;
// that guard keeps retried approvals from double charging.
func (s *borrowService) Approve(ctx context.Context, actorID, transactionID int32, notes string) (*domain.ApprovalResult, error) {
	var (
		result    *domain.ApprovalResult
		memberID  int32
		batchSize int
		histories []domain.ItemHistoryEntry
	)

	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		anchor, err := r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if anchor.Status != domain.TransactionStatusPending {
			return domain.Ef(domain.KindConflict, "transaction %d already processed (status %s)", anchor.ID, anchor.Status)
		}

		batch := []domain.BorrowTransaction{*anchor}
		if anchor.BatchID != uuid.Nil {
			siblings, err := r.Transactions.ListPendingByBatchForUpdate(ctx, anchor.BatchID)
			if err != nil {
				return err
			}
			if len(siblings) > 0 {
				batch = siblings
			}
		}
		sort.Slice(batch, func(i, j int) bool {
			if batch[i].EquipmentID != batch[j].EquipmentID {
				return batch[i].EquipmentID < batch[j].EquipmentID
			}
			return batch[i].ID < batch[j].ID
		})

		member, err := r.Members.GetForUpdate(ctx, anchor.MemberID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		var lineSummaries []string
		for i := range batch {
			t := &batch[i]
			eq, err := r.Equipment.GetForUpdate(ctx, t.EquipmentID)
			if err != nil {
				return err
			}

			earmarks, err := r.Transactions.ListOpenBorrowedItemsForUpdate(ctx, t.ID)
			if err != nil {
				return err
			}
			if len(earmarks) == 0 {
				// Aggregate line: pin available units now, under the
				// equipment lock, so concurrent approvals cannot oversell.
				items, err := r.Equipment.PickAvailableForUpdate(ctx, t.EquipmentID, t.QuantityBorrowed)
				if err != nil {
					return err
				}
				if int32(len(items)) < t.QuantityBorrowed {
					return domain.Ef(domain.KindInsufficientStock,
						"insufficient stock for %q: requested %d, available %d", eq.Name, t.QuantityBorrowed, len(items))
				}
				for _, item := range items {
					if err := r.Equipment.UpdateItemStatus(ctx, item.ID, domain.ItemStatusBorrowed); err != nil {
						return err
					}
					histories = append(histories, domain.ItemHistoryEntry{
						ItemID:        item.ID,
						Action:        "borrowed",
						ActorID:       &actorID,
						TransactionID: &t.ID,
						Note:          fmt.Sprintf("approved for member %d", t.MemberID),
					})
				}
			} else {
				// Itemized line: units were earmarked at intake; the
				// earmark count is the availability guarantee.
				if int32(len(earmarks)) != t.QuantityBorrowed {
					return domain.Ef(domain.KindConflict,
						"transaction %d has %d earmarked items but quantity %d", t.ID, len(earmarks), t.QuantityBorrowed)
				}
				for _, bi := range earmarks {
					histories = append(histories, domain.ItemHistoryEntry{
						ItemID:        bi.ItemID,
						Action:        "borrowed",
						ActorID:       &actorID,
						TransactionID: &t.ID,
						Note:          fmt.Sprintf("approved for member %d", t.MemberID),
					})
				}
			}

			cost := eq.CreditPerUnit.Mul(decimal.NewFromInt32(t.QuantityBorrowed))
			t.CreditDeducted = decimal.NullDecimal{Decimal: cost, Valid: true}
			total = total.Add(cost)
			lineSummaries = append(lineSummaries, fmt.Sprintf("%s x%d (%s)", eq.Name, t.QuantityBorrowed, cost))

			if _, err := r.Equipment.RecomputeQuantity(ctx, t.EquipmentID); err != nil {
				return err
			}
		}

		// Existing debt blocks new borrowing; a non-negative balance must
		// still cover the full batch cost.
		if member.Credit.IsNegative() {
			return domain.E(domain.KindInsufficientCredit, "member balance is negative; outstanding debt blocks new borrowing")
		}
		if member.Credit.LessThan(total) {
			return domain.Ef(domain.KindInsufficientCredit, "insufficient credit: need %s, have %s", total, member.Credit)
		}

		// A transaction carries at most one borrow entry; an existing row
		// means this charge already committed.
		prior, err := r.Ledger.CountByReference(ctx, domain.LedgerEntryTypeBorrow, domain.ReferenceTypeTransaction, transactionID)
		if err != nil {
			return err
		}
		if prior > 0 {
			return domain.Ef(domain.KindConflict, "transaction %d was already charged", transactionID)
		}

		newBalance := member.Credit.Sub(total)
		if err := r.Members.UpdateCredit(ctx, member.ID, newBalance); err != nil {
			return err
		}

		// Exactly one borrow entry per approval call, covering all lines.
		entry := &domain.CreditLedgerEntry{
			MemberID:      member.ID,
			Amount:        total.Neg(),
			Type:          domain.LedgerEntryTypeBorrow,
			ReferenceType: domain.ReferenceTypeTransaction,
			ReferenceID:   &transactionID,
			Description:   "borrow reservation: " + strings.Join(lineSummaries, ", "),
			BalanceAfter:  newBalance,
			ActorID:       &actorID,
		}
		if err := r.Ledger.Append(ctx, entry); err != nil {
			return err
		}

		now := time.Now()
		for i := range batch {
			t := &batch[i]
			t.Status = domain.TransactionStatusApproved
			t.ApprovedBy = &actorID
			t.ApprovedOn = &now
			t.ApprovalNotes = notes
			if err := r.Transactions.Update(ctx, t); err != nil {
				return err
			}
		}

		memberID = member.ID
		batchSize = len(batch)
		result = &domain.ApprovalResult{
			CreditDeducted:  total,
			RemainingCredit: newBalance,
			ApprovedCount:   int32(batchSize),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// One combined notification per batch, not one per line.
	s.notifier.Publish(notify.Event{
		Type:     domain.EventRequestApproved,
		MemberID: &memberID,
		Title:    "Borrow request approved",
		Message:  fmt.Sprintf("%d line(s) approved, %s credit reserved", batchSize, result.CreditDeducted),
		Attributes: map[string]string{
			"transaction_id": fmt.Sprintf("%d", transactionID),
		},
	})
	for _, h := range histories {
		s.notifier.PublishHistory(h)
	}
	return result, nil
}

// Reject declines a pending transaction and its pending batch siblings.
// No ledger effect; earmarked units are released.
func (s *borrowService) Reject(ctx context.Context, actorID, transactionID int32, notes string) error {
	if strings.TrimSpace(notes) == "" {
		return domain.E(domain.KindValidation, "rejection notes are required")
	}

	var memberID int32
	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		anchor, err := r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if anchor.Status != domain.TransactionStatusPending {
			return domain.Ef(domain.KindConflict, "transaction %d already processed (status %s)", anchor.ID, anchor.Status)
		}

		batch := []domain.BorrowTransaction{*anchor}
		if anchor.BatchID != uuid.Nil {
			siblings, err := r.Transactions.ListPendingByBatchForUpdate(ctx, anchor.BatchID)
			if err != nil {
				return err
			}
			if len(siblings) > 0 {
				batch = siblings
			}
		}

		now := time.Now()
		for i := range batch {
			t := &batch[i]
			if err := releaseEarmarks(ctx, r, t, now); err != nil {
				return err
			}
			t.Status = domain.TransactionStatusCancelled
			t.ApprovedBy = &actorID
			t.ApprovedOn = &now
			t.ApprovalNotes = notes
			if err := r.Transactions.Update(ctx, t); err != nil {
				return err
			}
		}
		memberID = anchor.MemberID
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(notify.Event{
		Type:     domain.EventRequestRejected,
		MemberID: &memberID,
		Title:    "Borrow request rejected",
		Message:  notes,
		Attributes: map[string]string{
			"transaction_id": fmt.Sprintf("%d", transactionID),
		},
	})
	return nil
}

// Cancel lets a member withdraw their own pending transaction. A simple
// status flip guarded by the PENDING precondition; approved state is
// never rolled back here.
func (s *borrowService) Cancel(ctx context.Context, memberID, transactionID int32) error {
	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		t, err := r.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if t.MemberID != memberID {
			return domain.E(domain.KindNotFound, "transaction not found")
		}
		if t.Status != domain.TransactionStatusPending {
			return domain.Ef(domain.KindConflict, "only pending requests can be cancelled (status %s)", t.Status)
		}

		now := time.Now()
		if err := releaseEarmarks(ctx, r, t, now); err != nil {
			return err
		}
		t.Status = domain.TransactionStatusCancelled
		return r.Transactions.Update(ctx, t)
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(notify.Event{
		Type:     domain.EventRequestCancelled,
		Title:    "Borrow request cancelled",
		Message:  fmt.Sprintf("Member %d cancelled transaction %d", memberID, transactionID),
		Attributes: map[string]string{
			"transaction_id": fmt.Sprintf("%d", transactionID),
		},
	})
	return nil
}

// releaseEarmarks frees units pinned at intake when a pending request
// dies before approval.
func releaseEarmarks(ctx context.Context, r *repository.Repositories, t *domain.BorrowTransaction, now time.Time) error {
	earmarks, err := r.Transactions.ListOpenBorrowedItemsForUpdate(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(earmarks) == 0 {
		return nil
	}
	for i := range earmarks {
		bi := &earmarks[i]
		bi.Status = domain.BorrowedItemStatusReturned
		bi.ReturnedDate = &now
		if err := r.Transactions.UpdateBorrowedItem(ctx, bi); err != nil {
			return err
		}
		if err := r.Equipment.UpdateItemStatus(ctx, bi.ItemID, domain.ItemStatusAvailable); err != nil {
			return err
		}
	}
	_, err = r.Equipment.RecomputeQuantity(ctx, t.EquipmentID)
	return err
}
