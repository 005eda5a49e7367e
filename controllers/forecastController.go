package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inventory-server/models"
	"inventory-server/services"
	"inventory-server/store"
)

type ForecastController struct {
	Store store.Source
	Now   func() time.Time
}

func (h *ForecastController) options(c *gin.Context) (services.ForecastOptions, bool) {
	lookback, ok := intQuery(c, "lookback", services.DefaultLookbackDays, 1, services.MaxWindowDays)
	if !ok {
		badRequest(c, fmt.Sprintf("lookback must be between 1 and %d", services.MaxWindowDays))
		return services.ForecastOptions{}, false
	}
	horizon, ok := intQuery(c, "horizon", services.DefaultHorizonDays, 1, services.MaxWindowDays)
	if !ok {
		badRequest(c, fmt.Sprintf("horizon must be between 1 and %d", services.MaxWindowDays))
		return services.ForecastOptions{}, false
	}
	return services.ForecastOptions{LookbackDays: lookback, HorizonDays: horizon, Now: now(h.Now)}, true
}

// outbound lists outbound movements inside the lookback window. itemID may
// be empty to cover every item.
func outbound(c *gin.Context, st store.Store, itemID string, opts services.ForecastOptions) ([]models.StockMovement, error) {
	return st.ListMovements(c.Request.Context(), store.MovementFilter{
		ItemID: itemID,
		Type:   models.MovementOut,
		From:   opts.WindowStart(),
	})
}

// ForecastAll handles GET /api/forecast.
func (h *ForecastController) ForecastAll(c *gin.Context) {
	opts, ok := h.options(c)
	if !ok {
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
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
	c.JSON(http.StatusOK, services.ForecastAll(items, movements, opts))
}

// ForecastItem handles GET /api/forecast/:itemId.
func (h *ForecastController) ForecastItem(c *gin.Context) {
	opts, ok := h.options(c)
	if !ok {
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	item, err := st.GetItem(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	movements, err := outbound(c, st, item.ID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.ForecastItem(item, movements, opts))
}
