package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"inventory-server/models"
	"inventory-server/store"
)

const itemColumns = `id, sku, name, description, category, unit, quantity, unit_price,
	warehouse_id, reorder_level, reorder_quantity, lead_time_days, created_at, updated_at`

func scanItem(row scanner) (models.Item, error) {
	var (
		it               models.Item
		created, updated string
	)
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Description, &it.Category, &it.Unit,
		&it.Quantity, &it.UnitPrice, &it.WarehouseID, &it.ReorderLevel, &it.ReorderQuantity,
		&it.LeadTimeDays, &created, &updated)
	if err != nil {
		return it, err
	}
	if it.CreatedAt, err = parseTime(created); err != nil {
		return it, err
	}
	it.UpdatedAt, err = parseTime(updated)
	return it, err
}

func (s *Store) CreateItem(ctx context.Context, it *models.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.SKU, it.Name, it.Description, it.Category, it.Unit, it.Quantity, it.UnitPrice,
		it.WarehouseID, it.ReorderLevel, it.ReorderQuantity, it.LeadTimeDays,
		formatTime(it.CreatedAt), formatTime(it.UpdatedAt))
	return translate(err)
}

func (s *Store) ListItems(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.WarehouseID != "" {
		where = append(where, "warehouse_id = ?")
		args = append(args, f.WarehouseID)
	}
	if f.Query != "" {
		where = append(where, "(name LIKE ? ESCAPE '\\' OR sku LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(f.Query) + "%"
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + itemColumns + " FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	return it, translate(err)
}

func (s *Store) UpdateItem(ctx context.Context, it *models.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET sku = ?, name = ?, description = ?, category = ?, unit = ?, unit_price = ?,
			warehouse_id = ?, reorder_level = ?, reorder_quantity = ?, lead_time_days = ?, updated_at = ?
		WHERE id = ?`,
		it.SKU, it.Name, it.Description, it.Category, it.Unit, it.UnitPrice, it.WarehouseID,
		it.ReorderLevel, it.ReorderQuantity, it.LeadTimeDays, formatTime(it.UpdatedAt), it.ID)
	if err != nil {
		return translate(err)
	}
	return requireOneRow(res)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (s *Store) UpdateReorderPolicy(ctx context.Context, id string, level, quantity float64) (models.Item, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET reorder_level = ?, reorder_quantity = ?, updated_at = ?
		WHERE id = ?`, level, quantity, formatTime(time.Now()), id)
	if err != nil {
		return models.Item{}, err
	}
	if err := requireOneRow(res); err != nil {
		return models.Item{}, err
	}
	return s.GetItem(ctx, id)
}

// ApplyMovement inserts the movement and updates the item in one transaction.
func (s *Store) ApplyMovement(ctx context.Context, m *models.StockMovement) (models.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Item{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	it, err := scanItem(tx.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", m.ItemID))
	if err != nil {
		return models.Item{}, translate(err)
	}

	switch m.Type {
	case models.MovementIn:
		it.Quantity += m.Quantity
	case models.MovementOut:
		if m.Quantity > it.Quantity {
			return models.Item{}, store.ErrInsufficientStock
		}
		it.Quantity -= m.Quantity
	case models.MovementAdjust:
		it.Quantity = m.Quantity
	default:
		return models.Item{}, fmt.Errorf("unknown movement type %q", m.Type)
	}
	it.UpdatedAt = m.CreatedAt

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements
			(id, item_id, type, quantity, unit_price, total_value, reference, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ItemID, m.Type, m.Quantity, m.UnitPrice, m.TotalValue, m.Reference, m.Notes,
		formatTime(m.CreatedAt)); err != nil {
		return models.Item{}, translate(err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE items SET quantity = ?, updated_at = ? WHERE id = ?",
		it.Quantity, formatTime(it.UpdatedAt), it.ID); err != nil {
		return models.Item{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

func (s *Store) ListMovements(ctx context.Context, f store.MovementFilter) ([]models.StockMovement, error) {
	var (
		where []string
		args  []any
	)
	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, formatTime(f.To))
	}

	query := `SELECT id, item_id, type, quantity, unit_price, total_value, reference, notes, created_at
		FROM stock_movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var (
			m       models.StockMovement
			created string
		)
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.UnitPrice, &m.TotalValue,
			&m.Reference, &m.Notes, &created); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
