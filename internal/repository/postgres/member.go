package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type memberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, name, email, credit, is_active, created_on`

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) scanMember(row *sql.Row) (*domain.Member, error) {
	m := &domain.Member{}
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Credit, &m.IsActive, &m.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "member not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *memberRepository) UpdateCredit(ctx context.Context, id int32, balance decimal.Decimal) error {
	query := `UPDATE members SET credit = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, balance, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.E(domain.KindNotFound, "member not found")
	}
	return nil
}
