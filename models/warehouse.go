package models

import "time"

type Warehouse struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Location  string    `json:"location" bson:"location"`
	Capacity  float64   `json:"capacity" bson:"capacity"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type WarehouseUtilization struct {
	WarehouseID string  `json:"warehouse_id"`
	Capacity    float64 `json:"capacity"`
	UnitsStored float64 `json:"units_stored"`
	ItemCount   int     `json:"item_count"`
	Percent     float64 `json:"percent"`
}
