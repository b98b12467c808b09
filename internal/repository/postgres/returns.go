package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type returnRepository struct {
	db DBTX
}

func NewReturnRepository(db DBTX) repository.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, rec *domain.ReturnRecord) error {
	query := `INSERT INTO return_records
	          (transaction_id, quantity_returned, actual_return_date, return_status, days_overdue,
	           damage_cost, damage_description, late_penalty, partial_penalty, additional_penalty,
	           total_penalty, credit_returned, credit_deducted, net_credit_change, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id`
	if rec.CreatedOn.IsZero() {
		rec.CreatedOn = time.Now()
	}
	return r.db.QueryRowContext(ctx, query,
		rec.TransactionID, rec.QuantityReturned, rec.ActualReturnDate, rec.ReturnStatus, rec.DaysOverdue,
		rec.DamageCost, rec.DamageDescription, rec.LatePenalty, rec.PartialPenalty, rec.AdditionalPenalty,
		rec.TotalPenalty, rec.CreditReturned, rec.CreditDeducted, rec.NetCreditChange, rec.Notes, rec.CreatedOn,
	).Scan(&rec.ID)
}

func (r *returnRepository) ListByTransaction(ctx context.Context, transactionID int32) ([]domain.ReturnRecord, error) {
	query := `SELECT id, transaction_id, quantity_returned, actual_return_date, return_status, days_overdue,
	                 damage_cost, COALESCE(damage_description, ''), late_penalty, partial_penalty,
	                 additional_penalty, total_penalty, credit_returned, credit_deducted, net_credit_change,
	                 COALESCE(notes, ''), created_on
	          FROM return_records WHERE transaction_id = $1 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ReturnRecord
	for rows.Next() {
		var rec domain.ReturnRecord
		if err := rows.Scan(&rec.ID, &rec.TransactionID, &rec.QuantityReturned, &rec.ActualReturnDate,
			&rec.ReturnStatus, &rec.DaysOverdue, &rec.DamageCost, &rec.DamageDescription,
			&rec.LatePenalty, &rec.PartialPenalty, &rec.AdditionalPenalty, &rec.TotalPenalty,
			&rec.CreditReturned, &rec.CreditDeducted, &rec.NetCreditChange, &rec.Notes, &rec.CreatedOn); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *returnRepository) SumCreditReturned(ctx context.Context, transactionID int32) (decimal.Decimal, error) {
	query := `SELECT COALESCE(sum(credit_returned), 0) FROM return_records WHERE transaction_id = $1`
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(&sum)
	return sum, err
}
