package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inventory-server/cache"
	"inventory-server/models"
	"inventory-server/services"
	"inventory-server/store"
)

const summaryCacheKey = "analytics:summary"

type AnalyticsController struct {
	Store    store.Source
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

func (h *AnalyticsController) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Summary handles GET /api/analytics/summary. Cache failures are logged and
// fall through to the database.
func (h *AnalyticsController) Summary(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.Cache != nil {
		var cached models.DashboardSummary
		hit, err := h.Cache.Get(ctx, summaryCacheKey, &cached)
		if err != nil {
			h.logger().WarnContext(ctx, "analytics cache read", "err", err)
		}
		if hit {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	summary, err := services.Summarize(ctx, st)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, summaryCacheKey, summary, h.CacheTTL); err != nil {
			h.logger().WarnContext(ctx, "analytics cache write", "err", err)
		}
	}
	c.JSON(http.StatusOK, summary)
}

// MonthlyMovements handles GET /api/analytics/movements?month=YYYY-MM.
func (h *AnalyticsController) MonthlyMovements(c *gin.Context) {
	from, to, err := services.MonthBounds(c.Query("month"))
	if err != nil {
		badRequest(c, "month must be formatted as YYYY-MM")
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	items, err := st.ListItems(ctx, models.ItemFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	movements, err := st.ListMovements(ctx, store.MovementFilter{From: from, To: to})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month": c.Query("month"),
		"items": services.MovementTotals(items, movements),
	})
}

// TopItems handles GET /api/analytics/top-items?limit=N.
func (h *AnalyticsController) TopItems(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 5, 1, 50)
	if !ok {
		badRequest(c, "limit must be between 1 and 50")
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	items, err := st.ListItems(ctx, models.ItemFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	movements, err := st.ListMovements(ctx, store.MovementFilter{Type: models.MovementOut})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.TopItems(items, movements, limit))
}

// Categories handles GET /api/analytics/categories.
func (h *AnalyticsController) Categories(c *gin.Context) {
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	items, err := st.ListItems(c.Request.Context(), models.ItemFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.CategoryBreakdown(items))
}
