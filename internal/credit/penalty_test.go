package credit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHoursOverdue(t *testing.T) {
	expected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		actual time.Time
		want   int32
	}{
		{"on time", expected, 0},
		{"early", expected.Add(-3 * time.Hour), 0},
		{"exactly five hours", expected.Add(5 * time.Hour), 5},
		{"partial hour rounds up", expected.Add(90 * time.Minute), 2},
		{"one minute late", expected.Add(time.Minute), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HoursOverdue(expected, tt.actual))
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	expected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int32(0), DaysOverdue(expected, expected))
	assert.Equal(t, int32(1), DaysOverdue(expected, expected.Add(5*time.Hour)))
	assert.Equal(t, int32(1), DaysOverdue(expected, expected.Add(24*time.Hour)))
	assert.Equal(t, int32(2), DaysOverdue(expected, expected.Add(25*time.Hour)))
	assert.Equal(t, int32(7), DaysOverdue(expected, expected.Add(7*24*time.Hour)))
}

func TestLatePenalty(t *testing.T) {
	one := decimal.NewFromInt(1)

	assert.True(t, LatePenalty(0, one).IsZero())
	assert.True(t, LatePenalty(5, decimal.Zero).IsZero())
	assert.Equal(t, "5", LatePenalty(5, one).String())
	// fractional rates round the total up
	assert.Equal(t, "2", LatePenalty(3, decimal.RequireFromString("0.5")).String())
}

func TestPerItemCredit(t *testing.T) {
	assert.Equal(t, "5", PerItemCredit(decimal.NewFromInt(15), 3).String())
	assert.Equal(t, "3.3333", PerItemCredit(decimal.NewFromInt(10), 3).String())
	assert.True(t, PerItemCredit(decimal.NewFromInt(10), 0).IsZero())
}

func TestClampRefund(t *testing.T) {
	ceiling := decimal.NewFromInt(100)

	assert.Equal(t, "40", ClampRefund(decimal.NewFromInt(40), ceiling).String())
	assert.Equal(t, "100", ClampRefund(decimal.NewFromInt(250), ceiling).String())
	assert.True(t, ClampRefund(decimal.NewFromInt(-5), ceiling).IsZero())
}

func TestClampDeduction(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		want    string
	}{
		{"full deduction", "100", "30", "30"},
		{"clamped to balance", "10", "30", "10"},
		{"zero balance absorbs nothing", "0", "30", "0"},
		{"negative balance absorbs nothing", "-5", "30", "0"},
		{"negative amount is zero", "100", "-1", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDeduction(decimal.RequireFromString(tt.balance), decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestRefundStage(t *testing.T) {
	total := decimal.NewFromInt(10)

	// four stages of ceil(10/4)=3 until the remainder
	assert.Equal(t, "3", RefundStage(total, decimal.Zero, 4).String())
	assert.Equal(t, "3", RefundStage(total, decimal.NewFromInt(3), 4).String())
	assert.Equal(t, "3", RefundStage(total, decimal.NewFromInt(6), 4).String())
	assert.Equal(t, "1", RefundStage(total, decimal.NewFromInt(9), 4).String())
	assert.True(t, RefundStage(total, total, 4).IsZero())

	// one stage pays the whole remainder
	assert.Equal(t, "10", RefundStage(total, decimal.Zero, 1).String())
}

func TestStagedRefundsSumToTotal(t *testing.T) {
	total := decimal.RequireFromString("17")
	refunded := decimal.Zero
	for i := 0; i < 10; i++ {
		stage := RefundStage(total, refunded, 4)
		if stage.IsZero() {
			break
		}
		refunded = refunded.Add(stage)
	}
	assert.True(t, refunded.Equal(total), "refunded %s, want %s", refunded, total)
}
