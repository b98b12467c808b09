package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
)

type MemberRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	// GetForUpdate reads the member row under an exclusive lock. Callers
	// must hold it for the duration of one check-then-mutate sequence.
	GetForUpdate(ctx context.Context, id int32) (*domain.Member, error)
	UpdateCredit(ctx context.Context, id int32, balance decimal.Decimal) error
}

type EquipmentRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error)
	// RecomputeQuantity overwrites the aggregate quantity from a fresh
	// count of AVAILABLE items and returns the new value. Incremental
	// arithmetic on the aggregate is never trusted across requests.
	RecomputeQuantity(ctx context.Context, equipmentID int32) (int32, error)
	CountAvailableItems(ctx context.Context, equipmentID int32) (int32, error)
	GetAvailability(ctx context.Context, equipmentID int32) (*domain.Availability, error)

	GetItem(ctx context.Context, itemID int32) (*domain.EquipmentItem, error)
	GetItemsForUpdate(ctx context.Context, itemIDs []int32) ([]domain.EquipmentItem, error)
	// PickAvailableForUpdate locks up to n AVAILABLE units of the
	// equipment, ascending by id. Used by the aggregate borrow path.
	PickAvailableForUpdate(ctx context.Context, equipmentID int32, n int32) ([]domain.EquipmentItem, error)
	PickBorrowedForUpdate(ctx context.Context, equipmentID int32, n int32) ([]domain.EquipmentItem, error)
	UpdateItemStatus(ctx context.Context, itemID int32, status domain.ItemStatus) error
}

type TransactionRepository interface {
	Create(ctx context.Context, t *domain.BorrowTransaction) error
	GetByID(ctx context.Context, id int32) (*domain.BorrowTransaction, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.BorrowTransaction, error)
	// ListPendingByBatchForUpdate locks every PENDING sibling in the
	// batch, ascending by equipment id to keep lock order fixed.
	ListPendingByBatchForUpdate(ctx context.Context, batchID uuid.UUID) ([]domain.BorrowTransaction, error)
	Update(ctx context.Context, t *domain.BorrowTransaction) error
	ListByMember(ctx context.Context, memberID int32, status string, page, pageSize int32) ([]domain.BorrowTransaction, int32, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.BorrowTransaction, error)

	CreateBorrowedItem(ctx context.Context, bi *domain.BorrowedItem) error
	ListBorrowedItems(ctx context.Context, transactionID int32) ([]domain.BorrowedItem, error)
	ListOpenBorrowedItemsForUpdate(ctx context.Context, transactionID int32) ([]domain.BorrowedItem, error)
	UpdateBorrowedItem(ctx context.Context, bi *domain.BorrowedItem) error
}

type LedgerRepository interface {
	// Append inserts one immutable entry. There is no update or delete.
	Append(ctx context.Context, e *domain.CreditLedgerEntry) error
	List(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.CreditLedgerEntry, int32, error)
	GetSummary(ctx context.Context, memberID int32) (*domain.LedgerSummary, error)
	CountByReference(ctx context.Context, entryType domain.LedgerEntryType, referenceType string, referenceID int32) (int32, error)
}

type ReturnRepository interface {
	Create(ctx context.Context, r *domain.ReturnRecord) error
	ListByTransaction(ctx context.Context, transactionID int32) ([]domain.ReturnRecord, error)
	// SumCreditReturned totals principal refunds already paid out for a
	// transaction, so the final portion can be settled as an exact
	// remainder.
	SumCreditReturned(ctx context.Context, transactionID int32) (decimal.Decimal, error)
}

type RefundScheduleRepository interface {
	// Accumulate adds penalty onto the member's incomplete schedule, or
	// creates one with the given first refund date.
	Accumulate(ctx context.Context, memberID, transactionID int32, penalty decimal.Decimal, firstRefund time.Time) error
	ListDueForUpdate(ctx context.Context, asOf time.Time) ([]domain.PenaltyRefundSchedule, error)
	Update(ctx context.Context, s *domain.PenaltyRefundSchedule) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, memberID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, memberID int32) error
}

type ItemHistoryRepository interface {
	Append(ctx context.Context, h *domain.ItemHistoryEntry) error
}

// Repositories bundles every repository bound to one database handle:
// either the shared pool or a single transaction.
type Repositories struct {
	Members         MemberRepository
	Equipment       EquipmentRepository
	Transactions    TransactionRepository
	Ledger          LedgerRepository
	Returns         ReturnRepository
	RefundSchedules RefundScheduleRepository
	Notifications   NotificationRepository
	ItemHistory     ItemHistoryRepository
}

// Store hands out repositories and runs atomic units. Every mutating
// multi-step flow executes inside exactly one WithinTx call; any error
// rolls the whole unit back.
type Store interface {
	Repos() *Repositories
	WithinTx(ctx context.Context, fn func(r *Repositories) error) error
}
