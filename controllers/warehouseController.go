package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-server/models"
	"inventory-server/services"
	"inventory-server/store"
)

type WarehouseController struct {
	Store store.Source
	Now   func() time.Time
}

type warehouseRequest struct {
	Name     string  `json:"name" binding:"required"`
	Location string  `json:"location"`
	Capacity float64 `json:"capacity" binding:"gte=0"`
}

func (h *WarehouseController) CreateWarehouse(c *gin.Context) {
	var req warehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ts := now(h.Now)
	w := models.Warehouse{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Location:  req.Location,
		Capacity:  req.Capacity,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := st.CreateWarehouse(c.Request.Context(), &w); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WarehouseController) ListWarehouses(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	list, err := st.ListWarehouses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WarehouseController) GetWarehouse(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	w, err := st.GetWarehouse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WarehouseController) UpdateWarehouse(c *gin.Context) {
	var req warehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	w, err := st.GetWarehouse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	w.Name = strings.TrimSpace(req.Name)
	w.Location = req.Location
	w.Capacity = req.Capacity
	w.UpdatedAt = now(h.Now)

	if err := st.UpdateWarehouse(c.Request.Context(), &w); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWarehouse refuses with 409 while items are still stored there.
func (h *WarehouseController) DeleteWarehouse(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	if err := st.DeleteWarehouse(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Warehouse deleted successfully"})
}

// warehouseItems loads a warehouse and everything stored in it.
func warehouseItems(c *gin.Context, st store.Store) (models.Warehouse, []models.Item, bool) {
	ctx := c.Request.Context()
	w, err := st.GetWarehouse(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return models.Warehouse{}, nil, false
	}
	items, err := st.ListItems(ctx, models.ItemFilter{WarehouseID: w.ID})
	if err != nil {
		respondError(c, err)
		return models.Warehouse{}, nil, false
	}
	return w, items, true
}

func (h *WarehouseController) ListWarehouseItems(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	_, items, ok := warehouseItems(c, st)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *WarehouseController) Utilization(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	w, items, ok := warehouseItems(c, st)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.Utilization(w, items))
}
