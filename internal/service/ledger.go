package service

import (
	"context"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

func (s *ledgerService) GetBalance(ctx context.Context, memberID int32) (decimal.Decimal, error) {
	member, err := s.store.Repos().Members.GetByID(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	return member.Credit, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.CreditLedgerEntry, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.store.Repos().Ledger.List(ctx, memberID, page, pageSize)
}

func (s *ledgerService) GetSummary(ctx context.Context, memberID int32) (*domain.LedgerSummary, error) {
	return s.store.Repos().Ledger.GetSummary(ctx, memberID)
}
