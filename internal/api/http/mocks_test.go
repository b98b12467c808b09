package http_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"equiplend-backend/internal/domain"
)

// MockBorrowService
type MockBorrowService struct {
	mock.Mock
}

func (m *MockBorrowService) CreateRequest(ctx context.Context, memberID int32, req *domain.BorrowRequest) (*domain.BorrowRequestResult, error) {
	args := m.Called(ctx, memberID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequestResult), args.Error(1)
}

func (m *MockBorrowService) Approve(ctx context.Context, actorID, transactionID int32, notes string) (*domain.ApprovalResult, error) {
	args := m.Called(ctx, actorID, transactionID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalResult), args.Error(1)
}

func (m *MockBorrowService) Reject(ctx context.Context, actorID, transactionID int32, notes string) error {
	args := m.Called(ctx, actorID, transactionID, notes)
	return args.Error(0)
}

func (m *MockBorrowService) Cancel(ctx context.Context, memberID, transactionID int32) error {
	args := m.Called(ctx, memberID, transactionID)
	return args.Error(0)
}

func (m *MockBorrowService) SettleReturn(ctx context.Context, actorID, transactionID int32, req *domain.ReturnRequest) (*domain.SettlementResult, error) {
	args := m.Called(ctx, actorID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementResult), args.Error(1)
}

func (m *MockBorrowService) Get(ctx context.Context, transactionID int32) (*domain.BorrowTransaction, []domain.BorrowedItem, []domain.ReturnRecord, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	return args.Get(0).(*domain.BorrowTransaction), args.Get(1).([]domain.BorrowedItem), args.Get(2).([]domain.ReturnRecord), args.Error(3)
}

func (m *MockBorrowService) List(ctx context.Context, memberID int32, status string, page, pageSize int32) ([]domain.BorrowTransaction, int32, error) {
	args := m.Called(ctx, memberID, status, page, pageSize)
	return args.Get(0).([]domain.BorrowTransaction), args.Get(1).(int32), args.Error(2)
}

// MockLedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, memberID int32) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.CreditLedgerEntry, int32, error) {
	args := m.Called(ctx, memberID, page, pageSize)
	return args.Get(0).([]domain.CreditLedgerEntry), args.Get(1).(int32), args.Error(2)
}

func (m *MockLedgerService) GetSummary(ctx context.Context, memberID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}

// MockEquipmentService
type MockEquipmentService struct {
	mock.Mock
}

func (m *MockEquipmentService) GetAvailability(ctx context.Context, equipmentID int32) (*domain.Availability, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Availability), args.Error(1)
}
