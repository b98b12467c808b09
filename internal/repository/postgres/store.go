package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"equiplend-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can
// run against the pool or inside one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db    *sql.DB
	repos *repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepositories(db),
	}
}

func newRepositories(db DBTX) *repository.Repositories {
	return &repository.Repositories{
		Members:         NewMemberRepository(db),
		Equipment:       NewEquipmentRepository(db),
		Transactions:    NewTransactionRepository(db),
		Ledger:          NewLedgerRepository(db),
		Returns:         NewReturnRepository(db),
		RefundSchedules: NewRefundScheduleRepository(db),
		Notifications:   NewNotificationRepository(db),
		ItemHistory:     NewItemHistoryRepository(db),
	}
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// WithinTx runs fn with repositories bound to a single transaction.
// fn returning an error rolls everything back; a panic is re-raised
// after rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
