package postgres

import (
	"context"
	"time"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type ledgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, e *domain.CreditLedgerEntry) error {
	query := `INSERT INTO credit_ledger_entries
	          (member_id, amount, type, reference_type, reference_id, description, balance_after, actor_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if e.CreatedOn.IsZero() {
		e.CreatedOn = time.Now()
	}
	return r.db.QueryRowContext(ctx, query,
		e.MemberID, e.Amount, e.Type, e.ReferenceType, e.ReferenceID,
		e.Description, e.BalanceAfter, e.ActorID, e.CreatedOn,
	).Scan(&e.ID)
}

func (r *ledgerRepository) List(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.CreditLedgerEntry, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM credit_ledger_entries WHERE member_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, memberID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, member_id, amount, type, reference_type, reference_id,
	                 COALESCE(description, ''), balance_after, actor_id, created_on
	          FROM credit_ledger_entries WHERE member_id = $1
	          ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, memberID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.CreditLedgerEntry
	for rows.Next() {
		var e domain.CreditLedgerEntry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Amount, &e.Type, &e.ReferenceType, &e.ReferenceID,
			&e.Description, &e.BalanceAfter, &e.ActorID, &e.CreatedOn); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}

func (r *ledgerRepository) GetSummary(ctx context.Context, memberID int32) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{
		StatusCount: make(map[string]int32),
	}

	balanceQuery := `SELECT COALESCE(credit, 0) FROM members WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, balanceQuery, memberID).Scan(&summary.Balance); err != nil {
		return nil, err
	}

	activeQuery := `SELECT count(*) FROM borrow_transactions WHERE member_id = $1 AND status IN ('APPROVED', 'BORROWED')`
	if err := r.db.QueryRowContext(ctx, activeQuery, memberID).Scan(&summary.ActiveLoans); err != nil {
		return nil, err
	}

	pendingQuery := `SELECT count(*) FROM borrow_transactions WHERE member_id = $1 AND status = 'PENDING'`
	if err := r.db.QueryRowContext(ctx, pendingQuery, memberID).Scan(&summary.PendingRequests); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, count(*) FROM borrow_transactions WHERE member_id = $1 GROUP BY status`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.StatusCount[status] = count
	}
	return summary, rows.Err()
}

func (r *ledgerRepository) CountByReference(ctx context.Context, entryType domain.LedgerEntryType, referenceType string, referenceID int32) (int32, error) {
	query := `SELECT count(*) FROM credit_ledger_entries
	          WHERE type = $1 AND reference_type = $2 AND reference_id = $3`
	var count int32
	err := r.db.QueryRowContext(ctx, query, entryType, referenceType, referenceID).Scan(&count)
	return count, err
}
