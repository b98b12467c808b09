package postgres

import (
	"context"
	"time"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type itemHistoryRepository struct {
	db DBTX
}

func NewItemHistoryRepository(db DBTX) repository.ItemHistoryRepository {
	return &itemHistoryRepository{db: db}
}

func (r *itemHistoryRepository) Append(ctx context.Context, h *domain.ItemHistoryEntry) error {
	query := `INSERT INTO equipment_item_history (item_id, action, actor_id, transaction_id, note, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, h.ItemID, h.Action, h.ActorID, h.TransactionID, h.Note, time.Now()).Scan(&h.ID)
}
