package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository"
)

// CreateRequest validates and persists a borrow request as one
// transaction per line, all sharing one batch id. Lines fail
// independently: a bad line is skipped and reported while the rest
// proceed. Itemized lines earmark their units immediately so no second
// member can request the same serial while this one is pending.
func (s *borrowService) CreateRequest(ctx context.Context, memberID int32, req *domain.BorrowRequest) (*domain.BorrowRequestResult, error) {
	if err := validateBorrowRequest(req, s.policy.MaxBorrowDays); err != nil {
		return nil, err
	}

	result := &domain.BorrowRequestResult{
		BatchID: uuid.New(),
	}

	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		member, err := r.Members.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if !member.IsActive {
			return domain.E(domain.KindConflict, "member account is inactive")
		}

		for _, line := range req.Lines {
			err := s.intakeLine(ctx, r, memberID, result, req, line)
			switch {
			case err == nil:
			case isLineReject(err):
				result.Errors = append(result.Errors, domain.LineError{
					EquipmentID: line.EquipmentID,
					Message:     err.Error(),
				})
			default:
				// Unexpected persistence failure: abort the whole unit so
				// no half-written line survives.
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.TransactionIDs) > 0 {
		s.notifier.Publish(notify.Event{
			Type:     domain.EventRequestCreated,
			Title:    "New borrow request",
			Message:  fmt.Sprintf("Member %d requested %d equipment line(s)", memberID, len(result.TransactionIDs)),
			Attributes: map[string]string{
				"batch_id":  result.BatchID.String(),
				"member_id": fmt.Sprintf("%d", memberID),
			},
		})
	}
	return result, nil
}

// isLineReject reports whether err is a per-line business rejection
// (skip and continue) rather than a persistence failure (abort).
func isLineReject(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindNotFound, domain.KindConflict, domain.KindInsufficientStock:
		return true
	}
	return false
}

func (s *borrowService) intakeLine(ctx context.Context, r *repository.Repositories, memberID int32, result *domain.BorrowRequestResult, req *domain.BorrowRequest, line domain.BorrowLine) error {
	if line.Count() <= 0 {
		return domain.E(domain.KindValidation, "quantity must be positive")
	}

	// Itemized lines lock the equipment row before its item rows, the
	// same acquisition order approval uses.
	var eq *domain.Equipment
	var err error
	if line.Itemized() {
		eq, err = r.Equipment.GetForUpdate(ctx, line.EquipmentID)
	} else {
		eq, err = r.Equipment.GetByID(ctx, line.EquipmentID)
	}
	if err != nil {
		return err
	}
	if eq.Status != domain.EquipmentStatusActive {
		return domain.Ef(domain.KindConflict, "equipment %q is not available for borrowing", eq.Name)
	}

	var earmarked []domain.EquipmentItem
	if line.Itemized() {
		items, err := r.Equipment.GetItemsForUpdate(ctx, line.ItemIDs)
		if err != nil {
			return err
		}
		if len(items) != len(line.ItemIDs) {
			return domain.E(domain.KindNotFound, "one or more requested items do not exist")
		}
		for _, item := range items {
			if item.EquipmentID != line.EquipmentID {
				return domain.Ef(domain.KindValidation, "item %s does not belong to equipment %q", item.SerialNumber, eq.Name)
			}
			if item.Status != domain.ItemStatusAvailable {
				return domain.Ef(domain.KindConflict, "item %s is not available", item.SerialNumber)
			}
		}
		earmarked = items
	} else {
		available, err := r.Equipment.CountAvailableItems(ctx, line.EquipmentID)
		if err != nil {
			return err
		}
		if available < line.Quantity {
			return domain.Ef(domain.KindInsufficientStock, "insufficient stock for %q: requested %d, available %d", eq.Name, line.Quantity, available)
		}
	}

	t := &domain.BorrowTransaction{
		BatchID:          result.BatchID,
		MemberID:         memberID,
		EquipmentID:      line.EquipmentID,
		QuantityBorrowed: line.Count(),
		Status:           domain.TransactionStatusPending,
		Purpose:          req.Purpose,
		Location:         req.Location,
		BorrowDate:       req.BorrowDate,
		ExpectedReturn:   req.ExpectedReturn,
	}
	if err := r.Transactions.Create(ctx, t); err != nil {
		return err
	}

	// Earmark the requested serials now, not at approval.
	for _, item := range earmarked {
		bi := &domain.BorrowedItem{
			TransactionID: t.ID,
			ItemID:        item.ID,
			Status:        domain.BorrowedItemStatusBorrowed,
			BorrowedDate:  req.BorrowDate,
		}
		if err := r.Transactions.CreateBorrowedItem(ctx, bi); err != nil {
			return err
		}
		if err := r.Equipment.UpdateItemStatus(ctx, item.ID, domain.ItemStatusBorrowed); err != nil {
			return err
		}
	}
	if len(earmarked) > 0 {
		if _, err := r.Equipment.RecomputeQuantity(ctx, line.EquipmentID); err != nil {
			return err
		}
	}

	result.TransactionIDs = append(result.TransactionIDs, t.ID)
	return nil
}

func validateBorrowRequest(req *domain.BorrowRequest, maxBorrowDays int32) error {
	if req == nil || len(req.Lines) == 0 {
		return domain.E(domain.KindValidation, "request must contain at least one equipment line")
	}
	if req.BorrowDate.IsZero() || req.ExpectedReturn.IsZero() {
		return domain.E(domain.KindValidation, "borrow date and expected return date are required")
	}
	if !req.ExpectedReturn.After(req.BorrowDate) {
		return domain.E(domain.KindValidation, "expected return date must be after borrow date")
	}
	if maxBorrowDays > 0 {
		maxReturn := req.BorrowDate.Add(time.Duration(maxBorrowDays) * 24 * time.Hour)
		if req.ExpectedReturn.After(maxReturn) {
			return domain.Ef(domain.KindValidation, "borrow period exceeds the %d day maximum", maxBorrowDays)
		}
	}
	return nil
}
