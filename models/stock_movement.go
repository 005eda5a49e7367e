// models/stock_movement.go
package models

import "time"

const (
	MovementIn     = "in"
	MovementOut    = "out"
	MovementAdjust = "adjust"
)

type StockMovement struct {
	ID         string    `json:"id" bson:"_id"`
	ItemID     string    `json:"item_id" bson:"item_id"`
	Type       string    `json:"type" bson:"type"` // "in", "out" or "adjust"
	Quantity   float64   `json:"quantity" bson:"quantity"`
	UnitPrice  float64   `json:"unit_price" bson:"unit_price"`
	TotalValue float64   `json:"total_value" bson:"total_value"`
	Reference  string    `json:"reference" bson:"reference"`
	Notes      string    `json:"notes" bson:"notes"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// ValidMovementType reports whether t is one of the known movement types.
func ValidMovementType(t string) bool {
	return t == MovementIn || t == MovementOut || t == MovementAdjust
}
