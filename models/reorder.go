package models

import "time"

const (
	ReorderPending   = "pending"
	ReorderOrdered   = "ordered"
	ReorderReceived  = "received"
	ReorderCancelled = "cancelled"
)

type ReorderRequest struct {
	ID        string    `json:"id" bson:"_id"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	Quantity  float64   `json:"quantity" bson:"quantity"`
	Status    string    `json:"status" bson:"status"`
	Supplier  string    `json:"supplier" bson:"supplier"`
	Notes     string    `json:"notes" bson:"notes"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

var reorderTransitions = map[string][]string{
	ReorderPending: {ReorderOrdered, ReorderCancelled},
	ReorderOrdered: {ReorderReceived, ReorderCancelled},
}

// CanTransition reports whether a reorder request may move from one status
// to another. Received and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range reorderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ReorderSuggestion struct {
	Item              Item     `json:"item"`
	SuggestedQuantity float64  `json:"suggested_quantity"`
	DaysUntilStockout *float64 `json:"days_until_stockout"`
	Reason            string   `json:"reason"`
}
