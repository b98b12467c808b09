package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type equipmentRepository struct {
	db DBTX
}

func NewEquipmentRepository(db DBTX) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `id, name, category, credit_per_unit, quantity, status, created_on`

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	return r.scanEquipment(r.db.QueryRowContext(ctx, query, id))
}

func (r *equipmentRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1 FOR UPDATE`
	return r.scanEquipment(r.db.QueryRowContext(ctx, query, id))
}

func (r *equipmentRepository) scanEquipment(row *sql.Row) (*domain.Equipment, error) {
	e := &domain.Equipment{}
	err := row.Scan(&e.ID, &e.Name, &e.Category, &e.CreditPerUnit, &e.Quantity, &e.Status, &e.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "equipment not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *equipmentRepository) RecomputeQuantity(ctx context.Context, equipmentID int32) (int32, error) {
	query := `UPDATE equipment
	          SET quantity = (SELECT count(*) FROM equipment_items WHERE equipment_id = $1 AND status = 'AVAILABLE')
	          WHERE id = $1
	          RETURNING quantity`
	var quantity int32
	err := r.db.QueryRowContext(ctx, query, equipmentID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.E(domain.KindNotFound, "equipment not found")
	}
	return quantity, err
}

func (r *equipmentRepository) CountAvailableItems(ctx context.Context, equipmentID int32) (int32, error) {
	query := `SELECT count(*) FROM equipment_items WHERE equipment_id = $1 AND status = 'AVAILABLE'`
	var count int32
	err := r.db.QueryRowContext(ctx, query, equipmentID).Scan(&count)
	return count, err
}

func (r *equipmentRepository) GetAvailability(ctx context.Context, equipmentID int32) (*domain.Availability, error) {
	query := `SELECT status, count(*) FROM equipment_items WHERE equipment_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	av := &domain.Availability{EquipmentID: equipmentID}
	for rows.Next() {
		var status domain.ItemStatus
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case domain.ItemStatusAvailable:
			av.Available = count
		case domain.ItemStatusBorrowed:
			av.Borrowed = count
		case domain.ItemStatusMaintenance:
			av.Maintenance = count
		case domain.ItemStatusDamaged:
			av.Damaged = count
		case domain.ItemStatusLost:
			av.Lost = count
		}
	}
	return av, rows.Err()
}

const itemColumns = `id, equipment_id, serial_number, status, created_on`

func (r *equipmentRepository) GetItem(ctx context.Context, itemID int32) (*domain.EquipmentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE id = $1`
	item := &domain.EquipmentItem{}
	err := r.db.QueryRowContext(ctx, query, itemID).
		Scan(&item.ID, &item.EquipmentID, &item.SerialNumber, &item.Status, &item.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "equipment item not found")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *equipmentRepository) GetItemsForUpdate(ctx context.Context, itemIDs []int32) ([]domain.EquipmentItem, error) {
	ids := make([]int64, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = int64(id)
	}
	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	return r.queryItems(ctx, query, pq.Array(ids))
}

func (r *equipmentRepository) PickAvailableForUpdate(ctx context.Context, equipmentID int32, n int32) ([]domain.EquipmentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM equipment_items
	          WHERE equipment_id = $1 AND status = 'AVAILABLE'
	          ORDER BY id LIMIT $2 FOR UPDATE`
	return r.queryItems(ctx, query, equipmentID, n)
}

// PickBorrowedForUpdate selects units out under an aggregate loan.
// Units held by an open borrowed_items row belong to an itemized
// transaction and are never picked here.
func (r *equipmentRepository) PickBorrowedForUpdate(ctx context.Context, equipmentID int32, n int32) ([]domain.EquipmentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM equipment_items
	          WHERE equipment_id = $1 AND status = 'BORROWED'
	            AND NOT EXISTS (
	                SELECT 1 FROM borrowed_items bi
	                WHERE bi.item_id = equipment_items.id AND bi.status = 'BORROWED')
	          ORDER BY id LIMIT $2 FOR UPDATE`
	return r.queryItems(ctx, query, equipmentID, n)
}

func (r *equipmentRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.EquipmentItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.EquipmentItem
	for rows.Next() {
		var item domain.EquipmentItem
		if err := rows.Scan(&item.ID, &item.EquipmentID, &item.SerialNumber, &item.Status, &item.CreatedOn); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *equipmentRepository) UpdateItemStatus(ctx context.Context, itemID int32, status domain.ItemStatus) error {
	query := `UPDATE equipment_items SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, itemID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.E(domain.KindNotFound, "equipment item not found")
	}
	return nil
}
