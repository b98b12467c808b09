package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type refundScheduleRepository struct {
	db DBTX
}

func NewRefundScheduleRepository(db DBTX) repository.RefundScheduleRepository {
	return &refundScheduleRepository{db: db}
}

const scheduleColumns = `id, member_id, transaction_id, total_penalty, refunded_amount, next_refund_date, is_completed, created_on, updated_on`

// Accumulate folds a new penalty into the member's open schedule so
// successive settlements extend one staged refund instead of racing
// several. The transaction id tracks the most recent contributor.
func (r *refundScheduleRepository) Accumulate(ctx context.Context, memberID, transactionID int32, penalty decimal.Decimal, firstRefund time.Time) error {
	query := `SELECT ` + scheduleColumns + ` FROM penalty_refund_schedules
	          WHERE member_id = $1 AND is_completed = false
	          ORDER BY id LIMIT 1 FOR UPDATE`
	s := &domain.PenaltyRefundSchedule{}
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&s.ID, &s.MemberID, &s.TransactionID, &s.TotalPenalty, &s.RefundedAmount,
		&s.NextRefundDate, &s.IsCompleted, &s.CreatedOn, &s.UpdatedOn)

	if errors.Is(err, sql.ErrNoRows) {
		insert := `INSERT INTO penalty_refund_schedules
		           (member_id, transaction_id, total_penalty, refunded_amount, next_refund_date, is_completed, created_on, updated_on)
		           VALUES ($1, $2, $3, 0, $4, false, $5, $5)`
		_, err := r.db.ExecContext(ctx, insert, memberID, transactionID, penalty, firstRefund, time.Now())
		return err
	}
	if err != nil {
		return err
	}

	update := `UPDATE penalty_refund_schedules
	           SET total_penalty = total_penalty + $1, transaction_id = $2, updated_on = $3
	           WHERE id = $4`
	_, err = r.db.ExecContext(ctx, update, penalty, transactionID, time.Now(), s.ID)
	return err
}

func (r *refundScheduleRepository) ListDueForUpdate(ctx context.Context, asOf time.Time) ([]domain.PenaltyRefundSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM penalty_refund_schedules
	          WHERE is_completed = false AND next_refund_date <= $1
	          ORDER BY member_id FOR UPDATE`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []domain.PenaltyRefundSchedule
	for rows.Next() {
		var s domain.PenaltyRefundSchedule
		if err := rows.Scan(&s.ID, &s.MemberID, &s.TransactionID, &s.TotalPenalty, &s.RefundedAmount,
			&s.NextRefundDate, &s.IsCompleted, &s.CreatedOn, &s.UpdatedOn); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *refundScheduleRepository) Update(ctx context.Context, s *domain.PenaltyRefundSchedule) error {
	query := `UPDATE penalty_refund_schedules
	          SET total_penalty = $1, refunded_amount = $2, next_refund_date = $3, is_completed = $4, updated_on = $5
	          WHERE id = $6`
	_, err := r.db.ExecContext(ctx, query,
		s.TotalPenalty, s.RefundedAmount, s.NextRefundDate, s.IsCompleted, time.Now(), s.ID)
	return err
}
