package jobs_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

// fakeStore hands every call the same mocked repositories; WithinTx just
// runs the unit so tests can assert the calls made inside it.
type fakeStore struct {
	repos *repository.Repositories
}

func (s *fakeStore) Repos() *repository.Repositories { return s.repos }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	return fn(s.repos)
}

func newMockedStore() (*fakeStore, *mocks) {
	m := &mocks{
		members:      &MockMemberRepo{},
		equipment:    &MockEquipmentRepo{},
		transactions: &MockTransactionRepo{},
		ledger:       &MockLedgerRepo{},
		returns:      &MockReturnRepo{},
		schedules:    &MockRefundScheduleRepo{},
	}
	store := &fakeStore{repos: &repository.Repositories{
		Members:         m.members,
		Equipment:       m.equipment,
		Transactions:    m.transactions,
		Ledger:          m.ledger,
		Returns:         m.returns,
		RefundSchedules: m.schedules,
	}}
	return store, m
}

type mocks struct {
	members      *MockMemberRepo
	equipment    *MockEquipmentRepo
	transactions *MockTransactionRepo
	ledger       *MockLedgerRepo
	returns      *MockReturnRepo
	schedules    *MockRefundScheduleRepo
}

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) UpdateCredit(ctx context.Context, id int32, balance decimal.Decimal) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) RecomputeQuantity(ctx context.Context, equipmentID int32) (int32, error) {
	args := m.Called(ctx, equipmentID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockEquipmentRepo) CountAvailableItems(ctx context.Context, equipmentID int32) (int32, error) {
	args := m.Called(ctx, equipmentID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockEquipmentRepo) GetAvailability(ctx context.Context, equipmentID int32) (*domain.Availability, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Availability), args.Error(1)
}
func (m *MockEquipmentRepo) GetItem(ctx context.Context, itemID int32) (*domain.EquipmentItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EquipmentItem), args.Error(1)
}
func (m *MockEquipmentRepo) GetItemsForUpdate(ctx context.Context, itemIDs []int32) ([]domain.EquipmentItem, error) {
	args := m.Called(ctx, itemIDs)
	return args.Get(0).([]domain.EquipmentItem), args.Error(1)
}
func (m *MockEquipmentRepo) PickAvailableForUpdate(ctx context.Context, equipmentID int32, n int32) ([]domain.EquipmentItem, error) {
	args := m.Called(ctx, equipmentID, n)
	return args.Get(0).([]domain.EquipmentItem), args.Error(1)
}
func (m *MockEquipmentRepo) PickBorrowedForUpdate(ctx context.Context, equipmentID int32, n int32) ([]domain.EquipmentItem, error) {
	args := m.Called(ctx, equipmentID, n)
	return args.Get(0).([]domain.EquipmentItem), args.Error(1)
}
func (m *MockEquipmentRepo) UpdateItemStatus(ctx context.Context, itemID int32, status domain.ItemStatus) error {
	args := m.Called(ctx, itemID, status)
	return args.Error(0)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, t *domain.BorrowTransaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int32) (*domain.BorrowTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowTransaction), args.Error(1)
}
func (m *MockTransactionRepo) GetForUpdate(ctx context.Context, id int32) (*domain.BorrowTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowTransaction), args.Error(1)
}
func (m *MockTransactionRepo) ListPendingByBatchForUpdate(ctx context.Context, batchID uuid.UUID) ([]domain.BorrowTransaction, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).([]domain.BorrowTransaction), args.Error(1)
}
func (m *MockTransactionRepo) Update(ctx context.Context, t *domain.BorrowTransaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTransactionRepo) ListByMember(ctx context.Context, memberID int32, status string, page, pageSize int32) ([]domain.BorrowTransaction, int32, error) {
	args := m.Called(ctx, memberID, status, page, pageSize)
	return args.Get(0).([]domain.BorrowTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.BorrowTransaction, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.BorrowTransaction), args.Error(1)
}
func (m *MockTransactionRepo) CreateBorrowedItem(ctx context.Context, bi *domain.BorrowedItem) error {
	args := m.Called(ctx, bi)
	return args.Error(0)
}
func (m *MockTransactionRepo) ListBorrowedItems(ctx context.Context, transactionID int32) ([]domain.BorrowedItem, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]domain.BorrowedItem), args.Error(1)
}
func (m *MockTransactionRepo) ListOpenBorrowedItemsForUpdate(ctx context.Context, transactionID int32) ([]domain.BorrowedItem, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]domain.BorrowedItem), args.Error(1)
}
func (m *MockTransactionRepo) UpdateBorrowedItem(ctx context.Context, bi *domain.BorrowedItem) error {
	args := m.Called(ctx, bi)
	return args.Error(0)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Append(ctx context.Context, e *domain.CreditLedgerEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockLedgerRepo) List(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.CreditLedgerEntry, int32, error) {
	args := m.Called(ctx, memberID, page, pageSize)
	return args.Get(0).([]domain.CreditLedgerEntry), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedgerRepo) GetSummary(ctx context.Context, memberID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}
func (m *MockLedgerRepo) CountByReference(ctx context.Context, entryType domain.LedgerEntryType, referenceType string, referenceID int32) (int32, error) {
	args := m.Called(ctx, entryType, referenceType, referenceID)
	return args.Get(0).(int32), args.Error(1)
}

// MockReturnRepo
type MockReturnRepo struct {
	mock.Mock
}

func (m *MockReturnRepo) Create(ctx context.Context, r *domain.ReturnRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReturnRepo) ListByTransaction(ctx context.Context, transactionID int32) ([]domain.ReturnRecord, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]domain.ReturnRecord), args.Error(1)
}
func (m *MockReturnRepo) SumCreditReturned(ctx context.Context, transactionID int32) (decimal.Decimal, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockRefundScheduleRepo
type MockRefundScheduleRepo struct {
	mock.Mock
}

func (m *MockRefundScheduleRepo) Accumulate(ctx context.Context, memberID, transactionID int32, penalty decimal.Decimal, firstRefund time.Time) error {
	args := m.Called(ctx, memberID, transactionID, penalty, firstRefund)
	return args.Error(0)
}
func (m *MockRefundScheduleRepo) ListDueForUpdate(ctx context.Context, asOf time.Time) ([]domain.PenaltyRefundSchedule, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.PenaltyRefundSchedule), args.Error(1)
}
func (m *MockRefundScheduleRepo) Update(ctx context.Context, s *domain.PenaltyRefundSchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
