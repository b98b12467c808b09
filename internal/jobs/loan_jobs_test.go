package jobs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/jobs"
)

func overdueTransaction(id int32, daysLate int) domain.BorrowTransaction {
	now := time.Now()
	return domain.BorrowTransaction{
		ID:               id,
		MemberID:         1,
		EquipmentID:      7,
		QuantityBorrowed: 2,
		Status:           domain.TransactionStatusApproved,
		BorrowDate:       now.AddDate(0, 0, -daysLate-2),
		ExpectedReturn:   now.AddDate(0, 0, -daysLate),
	}
}

func TestMarkOverdueLoans_NotifiesOnly(t *testing.T) {
	store, m := newMockedStore()
	notifier := &captureNotifier{}
	runner := jobs.NewJobRunner(store, jobPolicy(), notifier, jobConfig())

	m.transactions.On("ListOverdue", mock.Anything, mock.Anything).
		Return([]domain.BorrowTransaction{overdueTransaction(10, 2)}, nil)

	runner.MarkOverdueLoans()

	if assert.Len(t, notifier.events, 1) {
		assert.Equal(t, domain.EventLoanOverdue, notifier.events[0].Type)
		assert.Equal(t, int32(1), *notifier.events[0].MemberID)
	}
	// auto_mark_lost is off: no inventory mutation
	m.transactions.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	m.equipment.AssertNotCalled(t, "UpdateItemStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkOverdueLoans_MarksUnitsLostPastThreshold(t *testing.T) {
	store, m := newMockedStore()
	cfg := jobConfig()
	cfg.Policy.AutoMarkLost = true
	runner := jobs.NewJobRunner(store, jobPolicy(), nil, cfg)

	tx := overdueTransaction(10, 10)
	m.transactions.On("ListOverdue", mock.Anything, mock.Anything).
		Return([]domain.BorrowTransaction{tx}, nil)
	m.transactions.On("GetForUpdate", mock.Anything, int32(10)).Return(&tx, nil)
	m.transactions.On("ListOpenBorrowedItemsForUpdate", mock.Anything, int32(10)).
		Return([]domain.BorrowedItem{}, nil)
	m.equipment.On("PickBorrowedForUpdate", mock.Anything, int32(7), int32(2)).
		Return([]domain.EquipmentItem{
			{ID: 21, EquipmentID: 7, Status: domain.ItemStatusBorrowed},
			{ID: 22, EquipmentID: 7, Status: domain.ItemStatusBorrowed},
		}, nil)
	m.equipment.On("UpdateItemStatus", mock.Anything, mock.AnythingOfType("int32"), domain.ItemStatusLost).Return(nil)
	m.equipment.On("RecomputeQuantity", mock.Anything, int32(7)).Return(int32(0), nil)

	runner.MarkOverdueLoans()

	m.equipment.AssertNumberOfCalls(t, "UpdateItemStatus", 2)
	// lost units carry no credit mutation until they resurface
	m.members.AssertNotCalled(t, "UpdateCredit", mock.Anything, mock.Anything, mock.Anything)
	m.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestMarkOverdueLoans_BelowThresholdKeepsUnits(t *testing.T) {
	store, m := newMockedStore()
	cfg := jobConfig()
	cfg.Policy.AutoMarkLost = true
	runner := jobs.NewJobRunner(store, jobPolicy(), nil, cfg)

	m.transactions.On("ListOverdue", mock.Anything, mock.Anything).
		Return([]domain.BorrowTransaction{overdueTransaction(10, 2)}, nil)

	runner.MarkOverdueLoans()

	m.transactions.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}
