// Package services holds the inventory calculations that sit between the
// controllers and the store: demand forecasting, reorder suggestions and
// analytics roll-ups.
package services

import (
	"math"
	"time"

	"inventory-server/models"
)

const (
	DefaultLookbackDays = 30
	DefaultHorizonDays  = 30
	MaxWindowDays       = 365

	// smoothingAlpha weights the most recent day in the exponential
	// moving average of daily demand.
	smoothingAlpha = 0.3
)

type ForecastOptions struct {
	LookbackDays int
	HorizonDays  int
	Now          time.Time
}

func (o ForecastOptions) withDefaults() ForecastOptions {
	if o.LookbackDays <= 0 {
		o.LookbackDays = DefaultLookbackDays
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = DefaultHorizonDays
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	o.Now = o.Now.UTC()
	return o
}

// WindowStart is the first instant covered by the lookback window.
func (o ForecastOptions) WindowStart() time.Time {
	o = o.withDefaults()
	return startOfDay(o.Now).AddDate(0, 0, -(o.LookbackDays - 1))
}

// DailyDemand buckets outbound movements into one slot per UTC day of the
// lookback window, oldest first. Movements outside the window are ignored.
func DailyDemand(movements []models.StockMovement, opts ForecastOptions) []float64 {
	opts = opts.withDefaults()
	start := opts.WindowStart()
	series := make([]float64, opts.LookbackDays)
	for _, m := range movements {
		if m.Type != models.MovementOut || m.CreatedAt.Before(start) {
			continue
		}
		day := int(startOfDay(m.CreatedAt.UTC()).Sub(start).Hours() / 24)
		if day < 0 || day >= len(series) {
			continue
		}
		series[day] += m.Quantity
	}
	return series
}

// Smooth returns the exponential moving average of series.
func Smooth(series []float64, alpha float64) float64 {
	if len(series) == 0 {
		return 0
	}
	level := series[0]
	for _, v := range series[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return level
}

// ForecastItem projects demand for one item from its movement history.
func ForecastItem(item models.Item, movements []models.StockMovement, opts ForecastOptions) models.Forecast {
	opts = opts.withDefaults()
	series := DailyDemand(movements, opts)

	var total float64
	for _, v := range series {
		total += v
	}
	average := total / float64(opts.LookbackDays)
	smoothed := Smooth(series, smoothingAlpha)
	// A quiet recent stretch must not hide sustained demand.
	daily := math.Max(smoothed, average)

	f := models.Forecast{
		ItemID:              item.ID,
		SKU:                 item.SKU,
		Name:                item.Name,
		Quantity:            item.Quantity,
		LookbackDays:        opts.LookbackDays,
		HorizonDays:         opts.HorizonDays,
		AverageDailyDemand:  round2(average),
		SmoothedDailyDemand: round2(smoothed),
		ProjectedDemand:     round2(daily * float64(opts.HorizonDays)),
	}
	if daily > 0 {
		days := round2(item.Quantity / daily)
		f.DaysUntilStockout = &days
	}
	f.ReorderRecommended = item.IsLowStock() ||
		(f.DaysUntilStockout != nil && *f.DaysUntilStockout <= float64(item.LeadTimeDays))
	return f
}

// ForecastAll forecasts every item, pairing each with its own movements.
func ForecastAll(items []models.Item, movements []models.StockMovement, opts ForecastOptions) []models.Forecast {
	byItem := make(map[string][]models.StockMovement)
	for _, m := range movements {
		byItem[m.ItemID] = append(byItem[m.ItemID], m)
	}
	out := make([]models.Forecast, 0, len(items))
	for _, it := range items {
		out = append(out, ForecastItem(it, byItem[it.ID], opts))
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
