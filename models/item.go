// models/item.go
package models

import "time"

type Item struct {
	ID              string    `json:"id" bson:"_id"`
	SKU             string    `json:"sku" bson:"sku"`
	Name            string    `json:"name" bson:"name"`
	Description     string    `json:"description" bson:"description"`
	Category        string    `json:"category" bson:"category"`
	Unit            string    `json:"unit" bson:"unit"`
	Quantity        float64   `json:"quantity" bson:"quantity"`
	UnitPrice       float64   `json:"unit_price" bson:"unit_price"`
	WarehouseID     string    `json:"warehouse_id" bson:"warehouse_id"`
	ReorderLevel    float64   `json:"reorder_level" bson:"reorder_level"`
	ReorderQuantity float64   `json:"reorder_quantity" bson:"reorder_quantity"`
	LeadTimeDays    int       `json:"lead_time_days" bson:"lead_time_days"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// IsLowStock reports whether the item sits at or below its reorder level.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// StockValue is quantity times unit price.
func (i Item) StockValue() float64 {
	return i.Quantity * i.UnitPrice
}

// ItemFilter narrows item listings. Empty fields match everything.
type ItemFilter struct {
	Category    string
	WarehouseID string
	Query       string
}
