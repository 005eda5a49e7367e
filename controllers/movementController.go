package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-server/models"
	"inventory-server/store"
)

type MovementController struct {
	Store store.Source
	Now   func() time.Time
}

type movementRequest struct {
	Type       string   `json:"type" binding:"required"`
	Quantity   float64  `json:"quantity" binding:"gte=0"`
	UnitPrice  *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	TotalValue *float64 `json:"total_value" binding:"omitempty,gte=0"`
	Reference  string   `json:"reference"`
	Notes      string   `json:"notes"`
}

// RecordMovement handles POST /api/items/:id/movements. Inbound and
// outbound movements must move at least one unit; an adjustment sets the
// absolute quantity and may be zero.
func (h *MovementController) RecordMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !models.ValidMovementType(req.Type) {
		badRequest(c, "type must be one of in, out, adjust")
		return
	}
	if req.Type != models.MovementAdjust && req.Quantity <= 0 {
		badRequest(c, "quantity must be greater than zero")
		return
	}

	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	item, err := st.GetItem(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	m := models.StockMovement{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		UnitPrice: item.UnitPrice,
		Reference: req.Reference,
		Notes:     req.Notes,
		CreatedAt: now(h.Now),
	}
	if req.UnitPrice != nil {
		m.UnitPrice = *req.UnitPrice
	}
	if req.TotalValue != nil {
		m.TotalValue = *req.TotalValue
	} else {
		m.TotalValue = m.Quantity * m.UnitPrice
	}

	updated, err := st.ApplyMovement(ctx, &m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"movement":        m,
		"item":            updated,
		"low_stock_alert": updated.IsLowStock(),
	})
}

// ListMovements handles GET /api/items/:id/movements, newest first.
func (h *MovementController) ListMovements(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := st.GetItem(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	movements, err := st.ListMovements(ctx, store.MovementFilter{ItemID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}
