package sqlitestore

import (
	"context"
	"time"

	"inventory-server/models"
	"inventory-server/store"
)

const reorderColumns = "id, item_id, quantity, status, supplier, notes, created_at, updated_at"

func scanReorder(row scanner) (models.ReorderRequest, error) {
	var (
		r                models.ReorderRequest
		created, updated string
	)
	err := row.Scan(&r.ID, &r.ItemID, &r.Quantity, &r.Status, &r.Supplier, &r.Notes, &created, &updated)
	if err != nil {
		return r, err
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return r, err
	}
	r.UpdatedAt, err = parseTime(updated)
	return r, err
}

func (s *Store) CreateReorder(ctx context.Context, r *models.ReorderRequest) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reorder_requests ("+reorderColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.ItemID, r.Quantity, r.Status, r.Supplier, r.Notes,
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	return translate(err)
}

func (s *Store) ListReorders(ctx context.Context, status string) ([]models.ReorderRequest, error) {
	query := "SELECT " + reorderColumns + " FROM reorder_requests"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reorders := []models.ReorderRequest{}
	for rows.Next() {
		r, err := scanReorder(rows)
		if err != nil {
			return nil, err
		}
		reorders = append(reorders, r)
	}
	return reorders, rows.Err()
}

func (s *Store) GetReorder(ctx context.Context, id string) (models.ReorderRequest, error) {
	r, err := scanReorder(s.db.QueryRowContext(ctx,
		"SELECT "+reorderColumns+" FROM reorder_requests WHERE id = ?", id))
	return r, translate(err)
}

func (s *Store) UpdateReorderStatus(ctx context.Context, id, from, to string) (models.ReorderRequest, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reorder_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, formatTime(time.Now()), id, from)
	if err != nil {
		return models.ReorderRequest{}, err
	}
	if err := requireOneRow(res); err != nil {
		// Distinguish a missing request from one whose status moved on.
		if _, getErr := s.GetReorder(ctx, id); getErr != nil {
			return models.ReorderRequest{}, getErr
		}
		return models.ReorderRequest{}, store.ErrConflict
	}
	return s.GetReorder(ctx, id)
}
