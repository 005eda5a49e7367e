package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-server/models"
	"inventory-server/services"
	"inventory-server/store"
)

type ReorderController struct {
	Store  store.Source
	Logger *slog.Logger
	Now    func() time.Time
}

// Suggestions handles GET /api/reorder/suggestions.
func (h *ReorderController) Suggestions(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	opts := services.ForecastOptions{Now: now(h.Now)}
	items, err := st.ListItems(c.Request.Context(), models.ItemFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	movements, err := outbound(c, st, "", opts)
	if err != nil {
		respondError(c, err)
		return
	}
	forecasts := services.ForecastAll(items, movements, opts)
	c.JSON(http.StatusOK, services.ReorderSuggestions(items, forecasts))
}

func validReorderStatus(s string) bool {
	switch s {
	case models.ReorderPending, models.ReorderOrdered, models.ReorderReceived, models.ReorderCancelled:
		return true
	}
	return false
}

// ListReorders handles GET /api/reorder?status=.
func (h *ReorderController) ListReorders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !validReorderStatus(status) {
		badRequest(c, "unknown status")
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	list, err := st.ListReorders(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type reorderRequest struct {
	ItemID   string  `json:"item_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gt=0"`
	Supplier string  `json:"supplier"`
	Notes    string  `json:"notes"`
}

// CreateReorder handles POST /api/reorder.
func (h *ReorderController) CreateReorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := st.GetItem(ctx, req.ItemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			badRequest(c, "unknown item_id")
			return
		}
		respondError(c, err)
		return
	}

	ts := now(h.Now)
	r := models.ReorderRequest{
		ID:        uuid.NewString(),
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		Status:    models.ReorderPending,
		Supplier:  req.Supplier,
		Notes:     req.Notes,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := st.CreateReorder(ctx, &r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/reorder/:id/status. Receiving a request
// books its quantity into stock.
func (h *ReorderController) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !validReorderStatus(req.Status) {
		badRequest(c, "unknown status")
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	current, err := st.GetReorder(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.CanTransition(current.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "cannot move reorder from " + current.Status + " to " + req.Status,
		})
		return
	}
	updated, err := st.UpdateReorderStatus(ctx, current.ID, current.Status, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	if updated.Status != models.ReorderReceived {
		c.JSON(http.StatusOK, gin.H{"reorder": updated})
		return
	}

	m := models.StockMovement{
		ID:        uuid.NewString(),
		ItemID:    updated.ItemID,
		Type:      models.MovementIn,
		Quantity:  updated.Quantity,
		Reference: "reorder:" + updated.ID,
		Notes:     "received from reorder request",
		CreatedAt: now(h.Now),
	}
	item, err := st.GetItem(ctx, updated.ItemID)
	if err == nil {
		m.UnitPrice = item.UnitPrice
		m.TotalValue = m.Quantity * m.UnitPrice
		item, err = st.ApplyMovement(ctx, &m)
	}
	if err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(ctx, "book received reorder", "reorder_id", updated.ID, "err", err)
		}
		// Put the request back so receiving can be retried.
		if _, rerr := st.UpdateReorderStatus(ctx, updated.ID, models.ReorderReceived, current.Status); rerr != nil && h.Logger != nil {
			h.Logger.ErrorContext(ctx, "revert reorder status", "reorder_id", updated.ID, "status", current.Status, "err", rerr)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reorder": updated, "movement": m, "item": item})
}

type thresholdRequest struct {
	ReorderLevel    float64 `json:"reorder_level" binding:"gte=0"`
	ReorderQuantity float64 `json:"reorder_quantity" binding:"gte=0"`
}

// UpdateThreshold handles PUT /api/reorder/items/:id/threshold.
func (h *ReorderController) UpdateThreshold(c *gin.Context) {
	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	item, err := st.UpdateReorderPolicy(c.Request.Context(), c.Param("id"), req.ReorderLevel, req.ReorderQuantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
