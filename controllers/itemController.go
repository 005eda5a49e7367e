package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-server/models"
	"inventory-server/store"
)

const defaultLeadTimeDays = 7

type ItemController struct {
	Store store.Source
	Now   func() time.Time
}

type itemRequest struct {
	SKU             string   `json:"sku" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Unit            string   `json:"unit"`
	Quantity        float64  `json:"quantity" binding:"gte=0"`
	UnitPrice       float64  `json:"unit_price" binding:"gte=0"`
	WarehouseID     string   `json:"warehouse_id"`
	ReorderLevel    *float64 `json:"reorder_level" binding:"omitempty,gte=0"`
	ReorderQuantity float64  `json:"reorder_quantity" binding:"gte=0"`
	LeadTimeDays    *int     `json:"lead_time_days" binding:"omitempty,gte=0,lte=365"`
}

func (r itemRequest) apply(it *models.Item) {
	it.SKU = strings.TrimSpace(r.SKU)
	it.Name = strings.TrimSpace(r.Name)
	it.Description = r.Description
	it.Category = strings.TrimSpace(r.Category)
	it.Unit = r.Unit
	it.UnitPrice = r.UnitPrice
	it.WarehouseID = r.WarehouseID
	it.ReorderQuantity = r.ReorderQuantity
	if r.ReorderLevel != nil {
		it.ReorderLevel = *r.ReorderLevel
	}
	if r.LeadTimeDays != nil {
		it.LeadTimeDays = *r.LeadTimeDays
	}
}

// warehouseExists writes the error response and reports false when id does
// not name a stored warehouse.
func warehouseExists(c *gin.Context, st store.Store, id string) bool {
	_, err := st.GetWarehouse(c.Request.Context(), id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrNotFound):
		badRequest(c, "unknown warehouse_id")
	default:
		respondError(c, err)
	}
	return false
}

// CreateItem handles POST /api/items.
func (h *ItemController) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	if req.WarehouseID != "" && !warehouseExists(c, st, req.WarehouseID) {
		return
	}

	now := now(h.Now)
	item := models.Item{
		ID:           uuid.NewString(),
		Quantity:     req.Quantity,
		ReorderLevel: 5,
		LeadTimeDays: defaultLeadTimeDays,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	req.apply(&item)

	if err := st.CreateItem(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListItems handles GET /api/items.
func (h *ItemController) ListItems(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	items, err := st.ListItems(c.Request.Context(), models.ItemFilter{
		Category:    c.Query("category"),
		WarehouseID: c.Query("warehouse_id"),
		Query:       strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem handles GET /api/items/:id.
func (h *ItemController) GetItem(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	item, err := st.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem handles PUT /api/items/:id. Quantity only changes through
// stock movements, so it is ignored here.
func (h *ItemController) UpdateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	item, err := st.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if req.WarehouseID != "" && req.WarehouseID != item.WarehouseID && !warehouseExists(c, st, req.WarehouseID) {
		return
	}
	req.apply(&item)
	item.UpdatedAt = now(h.Now)

	if err := st.UpdateItem(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/:id.
func (h *ItemController) DeleteItem(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	if err := st.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
