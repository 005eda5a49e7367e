package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"inventory-server/models"
	"inventory-server/store"
)

// Summarize loads items, warehouses and pending reorders concurrently and
// rolls them up into the dashboard numbers.
func Summarize(ctx context.Context, st store.Store) (models.DashboardSummary, error) {
	var (
		items      []models.Item
		warehouses []models.Warehouse
		pending    []models.ReorderRequest
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = st.ListItems(ctx, models.ItemFilter{})
		return err
	})
	g.Go(func() (err error) {
		warehouses, err = st.ListWarehouses(ctx)
		return err
	})
	g.Go(func() (err error) {
		pending, err = st.ListReorders(ctx, models.ReorderPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardSummary{}, err
	}

	s := models.DashboardSummary{
		ItemCount:      len(items),
		WarehouseCount: len(warehouses),
		PendingReorder: len(pending),
	}
	for _, it := range items {
		s.TotalUnits += it.Quantity
		s.TotalValue += it.StockValue()
		if it.IsLowStock() {
			s.LowStockCount++
		}
	}
	s.TotalValue = round2(s.TotalValue)
	return s, nil
}

// MonthBounds parses "YYYY-MM" into the half-open range [first day, first
// day of next month).
func MonthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

// MovementTotals sums stock in and out per item. Every item appears, even
// without movements; adjustments are not counted as flow.
func MovementTotals(items []models.Item, movements []models.StockMovement) []models.MovementSummary {
	totals := make(map[string]*models.MovementSummary, len(items))
	out := make([]models.MovementSummary, 0, len(items))
	for _, it := range items {
		out = append(out, models.MovementSummary{
			ItemID: it.ID, SKU: it.SKU, Name: it.Name, Unit: it.Unit, Category: it.Category,
		})
	}
	for i := range out {
		totals[out[i].ItemID] = &out[i]
	}
	for _, m := range movements {
		t, ok := totals[m.ItemID]
		if !ok {
			continue
		}
		switch m.Type {
		case models.MovementIn:
			t.TotalIn += m.Quantity
		case models.MovementOut:
			t.TotalOut += m.Quantity
		}
	}
	return out
}

// TopItems ranks items by outbound quantity.
func TopItems(items []models.Item, movements []models.StockMovement, limit int) []models.TopItem {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}
	agg := make(map[string]*models.TopItem)
	for _, m := range movements {
		if m.Type != models.MovementOut {
			continue
		}
		name, ok := names[m.ItemID]
		if !ok {
			continue
		}
		t := agg[m.ItemID]
		if t == nil {
			t = &models.TopItem{ItemID: m.ItemID, Name: name}
			agg[m.ItemID] = t
		}
		t.OutQuantity += m.Quantity
		t.Movements++
	}

	out := make([]models.TopItem, 0, len(agg))
	for _, t := range agg {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OutQuantity != out[j].OutQuantity {
			return out[i].OutQuantity > out[j].OutQuantity
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CategoryBreakdown groups units and stock value by category.
func CategoryBreakdown(items []models.Item) []models.CategoryBreakdown {
	agg := make(map[string]*models.CategoryBreakdown)
	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "uncategorized"
		}
		b := agg[cat]
		if b == nil {
			b = &models.CategoryBreakdown{Category: cat}
			agg[cat] = b
		}
		b.Items++
		b.Units += it.Quantity
		b.Value += it.StockValue()
	}
	out := make([]models.CategoryBreakdown, 0, len(agg))
	for _, b := range agg {
		b.Value = round2(b.Value)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Utilization reports how full a warehouse is.
func Utilization(w models.Warehouse, items []models.Item) models.WarehouseUtilization {
	u := models.WarehouseUtilization{WarehouseID: w.ID, Capacity: w.Capacity, ItemCount: len(items)}
	for _, it := range items {
		u.UnitsStored += it.Quantity
	}
	if w.Capacity > 0 {
		u.Percent = round2(u.UnitsStored / w.Capacity * 100)
	}
	return u
}
