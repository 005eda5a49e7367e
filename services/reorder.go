package services

import (
	"math"
	"sort"

	"inventory-server/models"
)

// ReorderSuggestions lists the items that need restocking: those at or
// below their reorder level, and those forecast to run out within their
// lead time. The most urgent come first.
func ReorderSuggestions(items []models.Item, forecasts []models.Forecast) []models.ReorderSuggestion {
	byItem := make(map[string]models.Forecast, len(forecasts))
	for _, f := range forecasts {
		byItem[f.ItemID] = f
	}

	out := []models.ReorderSuggestion{}
	for _, it := range items {
		f, ok := byItem[it.ID]
		var days *float64
		if ok {
			days = f.DaysUntilStockout
		}
		soon := days != nil && *days <= float64(it.LeadTimeDays)

		var reason string
		switch {
		case it.IsLowStock():
			reason = "below reorder level"
		case soon:
			reason = "projected stockout within lead time"
		default:
			continue
		}

		daily := 0.0
		if ok {
			daily = math.Max(f.SmoothedDailyDemand, f.AverageDailyDemand)
		}
		out = append(out, models.ReorderSuggestion{
			Item:              it,
			SuggestedQuantity: SuggestedQuantity(it, daily),
			DaysUntilStockout: days,
			Reason:            reason,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DaysUntilStockout, out[j].DaysUntilStockout
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		case b != nil:
			return false
		}
		return out[i].Item.Quantity < out[j].Item.Quantity
	})
	return out
}

// SuggestedQuantity covers demand over the lead time and restores the
// reorder level, but never orders less than the item's standard batch.
func SuggestedQuantity(it models.Item, dailyDemand float64) float64 {
	need := math.Ceil(dailyDemand*float64(it.LeadTimeDays) + it.ReorderLevel - it.Quantity)
	return math.Max(need, math.Max(it.ReorderQuantity, 0))
}
