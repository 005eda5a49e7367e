// Package store declares the persistence contracts shared by the MongoDB and
// SQLite drivers.
package store

import (
	"context"
	"errors"
	"time"

	"inventory-server/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnavailable       = errors.New("database unavailable")
)

// MovementFilter narrows movement listings. Zero values match everything;
// From is inclusive and To is exclusive.
type MovementFilter struct {
	ItemID string
	Type   string
	From   time.Time
	To     time.Time
}

type Items interface {
	CreateItem(ctx context.Context, item *models.Item) error
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id string) error
	UpdateReorderPolicy(ctx context.Context, id string, level, quantity float64) (models.Item, error)

	// ApplyMovement records m and changes the item quantity accordingly.
	// An outbound movement larger than the quantity on hand fails with
	// ErrInsufficientStock and records nothing.
	ApplyMovement(ctx context.Context, m *models.StockMovement) (models.Item, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]models.StockMovement, error)
}

type Warehouses interface {
	CreateWarehouse(ctx context.Context, w *models.Warehouse) error
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	GetWarehouse(ctx context.Context, id string) (models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, w *models.Warehouse) error
	// DeleteWarehouse fails with ErrConflict while items still reference it.
	DeleteWarehouse(ctx context.Context, id string) error
}

type Users interface {
	// RegisterUser stores u and sets its role: the first user registered
	// becomes an admin, every later one staff. Concurrent registrations on
	// an empty store yield exactly one admin.
	RegisterUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	CreatePasswordReset(ctx context.Context, r models.PasswordReset) error
	// ConsumePasswordReset marks the token used and returns its owner. Unknown,
	// used or expired tokens yield ErrNotFound.
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error)
}

type Reorders interface {
	CreateReorder(ctx context.Context, r *models.ReorderRequest) error
	ListReorders(ctx context.Context, status string) ([]models.ReorderRequest, error)
	GetReorder(ctx context.Context, id string) (models.ReorderRequest, error)
	// UpdateReorderStatus moves a request from one status to another. It
	// fails with ErrConflict when the stored status is no longer from.
	UpdateReorderStatus(ctx context.Context, id, from, to string) (models.ReorderRequest, error)
}

// Store is everything the HTTP layer needs from a database driver.
type Store interface {
	Items
	Warehouses
	Users
	Reorders

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Source hands out the active store. It returns ErrUnavailable while the
// database connection is not established.
type Source interface {
	Store() (Store, error)
}

type static struct{ s Store }

func (s static) Store() (Store, error) { return s.s, nil }

// Static wraps an already-open store as a Source.
func Static(s Store) Source {
	return static{s: s}
}
