package service

import (
	"context"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository"
)

// Policy carries the credit and lending policy knobs the engine needs.
// Values come from configuration; defaults are applied there.
type Policy struct {
	PenaltyPerHour     decimal.Decimal
	MaxRefundPerReturn decimal.Decimal
	MaxBorrowDays      int32
	LostThresholdDays  int32
	RefundCadenceDays  int32
	RefundStages       int32
}

type borrowService struct {
	store    repository.Store
	policy   Policy
	notifier notify.Publisher
}

func NewBorrowService(store repository.Store, policy Policy, notifier notify.Publisher) BorrowService {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &borrowService{
		store:    store,
		policy:   policy,
		notifier: notifier,
	}
}

func (s *borrowService) Get(ctx context.Context, transactionID int32) (*domain.BorrowTransaction, []domain.BorrowedItem, []domain.ReturnRecord, error) {
	r := s.store.Repos()
	t, err := r.Transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, nil, nil, err
	}
	items, err := r.Transactions.ListBorrowedItems(ctx, transactionID)
	if err != nil {
		return nil, nil, nil, err
	}
	returns, err := r.Returns.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, nil, nil, err
	}
	return t, items, returns, nil
}

func (s *borrowService) List(ctx context.Context, memberID int32, status string, page, pageSize int32) ([]domain.BorrowTransaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.store.Repos().Transactions.ListByMember(ctx, memberID, status, page, pageSize)
}
