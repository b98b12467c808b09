package service

import (
	"context"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
)

// BorrowService drives the lending lifecycle: intake, approval,
// rejection, cancellation and return settlement.
type BorrowService interface {
	CreateRequest(ctx context.Context, memberID int32, req *domain.BorrowRequest) (*domain.BorrowRequestResult, error)
	Approve(ctx context.Context, actorID, transactionID int32, notes string) (*domain.ApprovalResult, error)
	Reject(ctx context.Context, actorID, transactionID int32, notes string) error
	Cancel(ctx context.Context, memberID, transactionID int32) error
	SettleReturn(ctx context.Context, actorID, transactionID int32, req *domain.ReturnRequest) (*domain.SettlementResult, error)
	Get(ctx context.Context, transactionID int32) (*domain.BorrowTransaction, []domain.BorrowedItem, []domain.ReturnRecord, error)
	List(ctx context.Context, memberID int32, status string, page, pageSize int32) ([]domain.BorrowTransaction, int32, error)
}

type LedgerService interface {
	GetBalance(ctx context.Context, memberID int32) (decimal.Decimal, error)
	ListEntries(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.CreditLedgerEntry, int32, error)
	GetSummary(ctx context.Context, memberID int32) (*domain.LedgerSummary, error)
}

type EquipmentService interface {
	GetAvailability(ctx context.Context, equipmentID int32) (*domain.Availability, error)
}
