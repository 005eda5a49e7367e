package sqlitestore

import (
	"context"
	"fmt"
)

var schema = []struct {
	name string
	ddl  string
}{
	{"warehouses", `
		CREATE TABLE IF NOT EXISTS warehouses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			location TEXT NOT NULL DEFAULT '',
			capacity REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`},
	{"items", `
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT '',
			quantity REAL NOT NULL DEFAULT 0 CHECK(quantity >= 0),
			unit_price REAL NOT NULL DEFAULT 0,
			warehouse_id TEXT NOT NULL DEFAULT '',
			reorder_level REAL NOT NULL DEFAULT 5,
			reorder_quantity REAL NOT NULL DEFAULT 0,
			lead_time_days INTEGER NOT NULL DEFAULT 7,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`},
	{"stock_movements", `
		CREATE TABLE IF NOT EXISTS stock_movements (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			type TEXT CHECK(type IN ('in','out','adjust')) NOT NULL,
			quantity REAL NOT NULL,
			unit_price REAL NOT NULL DEFAULT 0,
			total_value REAL NOT NULL DEFAULT 0,
			reference TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
		);`},
	{"stock_movements_item_idx", `
		CREATE INDEX IF NOT EXISTS stock_movements_item_idx
			ON stock_movements (item_id, created_at);`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT CHECK(role IN ('admin','staff')) NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`},
	{"password_resets", `
		CREATE TABLE IF NOT EXISTS password_resets (
			token_hash TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			used INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);`},
	{"reorder_requests", `
		CREATE TABLE IF NOT EXISTS reorder_requests (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			quantity REAL NOT NULL,
			status TEXT CHECK(status IN ('pending','ordered','received','cancelled')) NOT NULL,
			supplier TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
		);`},
}

// Migrate creates every table that does not exist yet, all in one
// transaction.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("create %s: %w", stmt.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
