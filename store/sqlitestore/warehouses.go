package sqlitestore

import (
	"context"

	"inventory-server/models"
	"inventory-server/store"
)

const warehouseColumns = "id, name, location, capacity, created_at, updated_at"

func scanWarehouse(row scanner) (models.Warehouse, error) {
	var (
		w                models.Warehouse
		created, updated string
	)
	err := row.Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &created, &updated)
	if err != nil {
		return w, err
	}
	if w.CreatedAt, err = parseTime(created); err != nil {
		return w, err
	}
	w.UpdatedAt, err = parseTime(updated)
	return w, err
}

func (s *Store) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO warehouses ("+warehouseColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		w.ID, w.Name, w.Location, w.Capacity, formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
	return translate(err)
}

func (s *Store) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+warehouseColumns+" FROM warehouses ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	warehouses := []models.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (s *Store) GetWarehouse(ctx context.Context, id string) (models.Warehouse, error) {
	w, err := scanWarehouse(s.db.QueryRowContext(ctx,
		"SELECT "+warehouseColumns+" FROM warehouses WHERE id = ?", id))
	return w, translate(err)
}

func (s *Store) UpdateWarehouse(ctx context.Context, w *models.Warehouse) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE warehouses SET name = ?, location = ?, capacity = ?, updated_at = ? WHERE id = ?",
		w.Name, w.Location, w.Capacity, formatTime(w.UpdatedAt), w.ID)
	if err != nil {
		return translate(err)
	}
	return requireOneRow(res)
}

func (s *Store) DeleteWarehouse(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var stocked int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM items WHERE warehouse_id = ?", id).Scan(&stocked); err != nil {
		return err
	}
	if stocked > 0 {
		return store.ErrConflict
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM warehouses WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireOneRow(res); err != nil {
		return err
	}
	return tx.Commit()
}
