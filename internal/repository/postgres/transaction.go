package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type transactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, batch_id, member_id, equipment_id, quantity_borrowed, total_returned,
	status, purpose, location, borrow_date, expected_return_date,
	approved_by, approved_on, approval_notes, credit_deducted, accumulated_penalty,
	created_on, updated_on`

func (r *transactionRepository) Create(ctx context.Context, t *domain.BorrowTransaction) error {
	query := `INSERT INTO borrow_transactions
	          (batch_id, member_id, equipment_id, quantity_borrowed, total_returned, status,
	           purpose, location, borrow_date, expected_return_date, accumulated_penalty, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8, $9, 0, $10, $10)
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		t.BatchID, t.MemberID, t.EquipmentID, t.QuantityBorrowed, t.Status,
		t.Purpose, t.Location, t.BorrowDate, t.ExpectedReturn, time.Now(),
	).Scan(&t.ID)
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM borrow_transactions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *transactionRepository) GetForUpdate(ctx context.Context, id int32) (*domain.BorrowTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM borrow_transactions WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *transactionRepository) scanOne(row *sql.Row) (*domain.BorrowTransaction, error) {
	t := &domain.BorrowTransaction{}
	err := row.Scan(
		&t.ID, &t.BatchID, &t.MemberID, &t.EquipmentID, &t.QuantityBorrowed, &t.TotalReturned,
		&t.Status, &t.Purpose, &t.Location, &t.BorrowDate, &t.ExpectedReturn,
		&t.ApprovedBy, &t.ApprovedOn, &t.ApprovalNotes, &t.CreditDeducted, &t.AccumulatedPenalty,
		&t.CreatedOn, &t.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) ListPendingByBatchForUpdate(ctx context.Context, batchID uuid.UUID) ([]domain.BorrowTransaction, error) {
	// Ascending equipment id keeps the lock acquisition order fixed
	// across concurrent approvals of overlapping batches.
	query := `SELECT ` + transactionColumns + ` FROM borrow_transactions
	          WHERE batch_id = $1 AND status = 'PENDING'
	          ORDER BY equipment_id, id FOR UPDATE`
	return r.queryMany(ctx, query, batchID)
}

func (r *transactionRepository) Update(ctx context.Context, t *domain.BorrowTransaction) error {
	query := `UPDATE borrow_transactions
	          SET total_returned = $1, status = $2, approved_by = $3, approved_on = $4,
	              approval_notes = $5, credit_deducted = $6, accumulated_penalty = $7, updated_on = $8
	          WHERE id = $9`
	_, err := r.db.ExecContext(ctx, query,
		t.TotalReturned, t.Status, t.ApprovedBy, t.ApprovedOn,
		t.ApprovalNotes, t.CreditDeducted, t.AccumulatedPenalty, time.Now(), t.ID)
	return err
}

func (r *transactionRepository) ListByMember(ctx context.Context, memberID int32, status string, page, pageSize int32) ([]domain.BorrowTransaction, int32, error) {
	base := `FROM borrow_transactions WHERE member_id = $1`
	args := []any{memberID}
	argIdx := 2
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + transactionColumns + ` ` + base +
		fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	txs, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

func (r *transactionRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.BorrowTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM borrow_transactions
	          WHERE status IN ('APPROVED', 'BORROWED') AND expected_return_date < $1
	          ORDER BY expected_return_date`
	return r.queryMany(ctx, query, asOf)
}

func (r *transactionRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.BorrowTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.BorrowTransaction
	for rows.Next() {
		var t domain.BorrowTransaction
		if err := rows.Scan(
			&t.ID, &t.BatchID, &t.MemberID, &t.EquipmentID, &t.QuantityBorrowed, &t.TotalReturned,
			&t.Status, &t.Purpose, &t.Location, &t.BorrowDate, &t.ExpectedReturn,
			&t.ApprovedBy, &t.ApprovedOn, &t.ApprovalNotes, &t.CreditDeducted, &t.AccumulatedPenalty,
			&t.CreatedOn, &t.UpdatedOn,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) CreateBorrowedItem(ctx context.Context, bi *domain.BorrowedItem) error {
	query := `INSERT INTO borrowed_items (transaction_id, item_id, status, borrowed_date)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, bi.TransactionID, bi.ItemID, bi.Status, bi.BorrowedDate).Scan(&bi.ID)
}

const borrowedItemColumns = `id, transaction_id, item_id, status, borrowed_date, returned_date, COALESCE(condition_on_return, '')`

func (r *transactionRepository) ListBorrowedItems(ctx context.Context, transactionID int32) ([]domain.BorrowedItem, error) {
	query := `SELECT ` + borrowedItemColumns + ` FROM borrowed_items WHERE transaction_id = $1 ORDER BY id`
	return r.queryBorrowedItems(ctx, query, transactionID)
}

func (r *transactionRepository) ListOpenBorrowedItemsForUpdate(ctx context.Context, transactionID int32) ([]domain.BorrowedItem, error) {
	query := `SELECT ` + borrowedItemColumns + ` FROM borrowed_items
	          WHERE transaction_id = $1 AND status = 'BORROWED' ORDER BY id FOR UPDATE`
	return r.queryBorrowedItems(ctx, query, transactionID)
}

func (r *transactionRepository) queryBorrowedItems(ctx context.Context, query string, args ...any) ([]domain.BorrowedItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BorrowedItem
	for rows.Next() {
		var bi domain.BorrowedItem
		if err := rows.Scan(&bi.ID, &bi.TransactionID, &bi.ItemID, &bi.Status, &bi.BorrowedDate, &bi.ReturnedDate, &bi.ConditionOnReturn); err != nil {
			return nil, err
		}
		items = append(items, bi)
	}
	return items, rows.Err()
}

func (r *transactionRepository) UpdateBorrowedItem(ctx context.Context, bi *domain.BorrowedItem) error {
	query := `UPDATE borrowed_items SET status = $1, returned_date = $2, condition_on_return = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, bi.Status, bi.ReturnedDate, bi.ConditionOnReturn, bi.ID)
	return err
}
