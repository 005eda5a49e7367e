// models/analytics.go
package models

type DashboardSummary struct {
	ItemCount      int     `json:"item_count"`
	WarehouseCount int     `json:"warehouse_count"`
	TotalUnits     float64 `json:"total_units"`
	TotalValue     float64 `json:"total_value"`
	LowStockCount  int     `json:"low_stock_count"`
	PendingReorder int     `json:"pending_reorders"`
}

type MovementSummary struct {
	ItemID   string  `json:"item_id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	TotalIn  float64 `json:"total_in"`
	TotalOut float64 `json:"total_out"`
}

type TopItem struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	OutQuantity float64 `json:"out_quantity"`
	Movements   int     `json:"movements"`
}

type CategoryBreakdown struct {
	Category string  `json:"category"`
	Items    int     `json:"items"`
	Units    float64 `json:"units"`
	Value    float64 `json:"value"`
}

type Forecast struct {
	ItemID              string   `json:"item_id"`
	SKU                 string   `json:"sku"`
	Name                string   `json:"name"`
	Quantity            float64  `json:"quantity"`
	LookbackDays        int      `json:"lookback_days"`
	HorizonDays         int      `json:"horizon_days"`
	AverageDailyDemand  float64  `json:"average_daily_demand"`
	SmoothedDailyDemand float64  `json:"smoothed_daily_demand"`
	ProjectedDemand     float64  `json:"projected_demand"`
	DaysUntilStockout   *float64 `json:"days_until_stockout"`
	ReorderRecommended  bool     `json:"reorder_recommended"`
}
