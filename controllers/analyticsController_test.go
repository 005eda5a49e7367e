package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-server/database"
	"inventory-server/models"
	"inventory-server/store"
)

// memCache is an in-process cache.Cache that can be told to fail.
type memCache struct {
	data map[string][]byte
	fail bool
	sets int
}

func (m *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if m.fail {
		return false, errors.New("cache down")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	if m.fail {
		return errors.New("cache down")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets++
	return nil
}

func (m *memCache) Close() error { return nil }

func analyticsEngine(h *harness, c *memCache) *gin.Engine {
	a := &AnalyticsController{Store: store.Static(h.store), Cache: c, CacheTTL: time.Minute, Logger: noopLogger()}
	r := h.engine
	r.GET("/api/analytics/summary", a.Summary)
	r.GET("/api/analytics/movements", a.MonthlyMovements)
	r.GET("/api/analytics/top-items", a.TopItems)
	r.GET("/api/analytics/categories", a.Categories)
	return r
}

func TestAnalytics_SummaryIsCached(t *testing.T) {
	h := newHarness(t)
	c := &memCache{data: map[string][]byte{}}
	r := analyticsEngine(h, c)
	h.createItem("A-1", 4)
	h.createItem("A-2", 10)

	w := serveJSON(t, r, http.MethodGet, "/api/analytics/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s := decode[models.DashboardSummary](t, w)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, 14.0, s.TotalUnits)
	assert.Equal(t, 35.0, s.TotalValue)
	assert.Equal(t, 1, s.LowStockCount)
	assert.Empty(t, w.Header().Get("X-Cache"))

	h.createItem("A-3", 1)
	w = serveJSON(t, r, http.MethodGet, "/api/analytics/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, decode[models.DashboardSummary](t, w).ItemCount)
	assert.Equal(t, 1, c.sets)
}

func TestAnalytics_SummarySurvivesCacheFailure(t *testing.T) {
	h := newHarness(t)
	r := analyticsEngine(h, &memCache{data: map[string][]byte{}, fail: true})
	h.createItem("A-1", 4)

	w := serveJSON(t, r, http.MethodGet, "/api/analytics/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.DashboardSummary](t, w).ItemCount)
}

func TestAnalytics_MonthlyMovements(t *testing.T) {
	h := newHarness(t)
	r := analyticsEngine(h, &memCache{data: map[string][]byte{}})
	item := h.createItem("MM-1", 10)
	h.do(http.MethodPost, "/api/items/"+item.ID+"/movements", gin.H{"type": "in", "quantity": 6}, "")
	h.do(http.MethodPost, "/api/items/"+item.ID+"/movements", gin.H{"type": "out", "quantity": 4}, "")

	for _, q := range []string{"", "?month=2026-13", "?month=march"} {
		w := serveJSON(t, r, http.MethodGet, "/api/analytics/movements"+q, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w := serveJSON(t, r, http.MethodGet, "/api/analytics/movements?month=2026-03", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Month string                   `json:"month"`
		Items []models.MovementSummary `json:"items"`
	}](t, w)
	assert.Equal(t, "2026-03", resp.Month)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 6.0, resp.Items[0].TotalIn)
	assert.Equal(t, 4.0, resp.Items[0].TotalOut)

	w = serveJSON(t, r, http.MethodGet, "/api/analytics/movements?month=2026-02", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[struct {
		Month string                   `json:"month"`
		Items []models.MovementSummary `json:"items"`
	}](t, w)
	require.Len(t, resp.Items, 1)
	assert.Zero(t, resp.Items[0].TotalOut)
}

func TestAnalytics_TopItemsAndCategories(t *testing.T) {
	h := newHarness(t)
	r := analyticsEngine(h, &memCache{data: map[string][]byte{}})
	busy := h.createItem("TOP-1", 50)
	quiet := h.createItem("TOP-2", 50)
	h.do(http.MethodPost, "/api/items/"+busy.ID+"/movements", gin.H{"type": "out", "quantity": 20}, "")
	h.do(http.MethodPost, "/api/items/"+quiet.ID+"/movements", gin.H{"type": "out", "quantity": 2}, "")

	w := serveJSON(t, r, http.MethodGet, "/api/analytics/top-items?limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[[]models.TopItem](t, w)
	require.Len(t, top, 1)
	assert.Equal(t, busy.ID, top[0].ItemID)

	for _, q := range []string{"0", "51", "x"} {
		w = serveJSON(t, r, http.MethodGet, "/api/analytics/top-items?limit="+q, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w = serveJSON(t, r, http.MethodGet, "/api/analytics/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[[]models.CategoryBreakdown](t, w)
	require.Len(t, cats, 1)
	assert.Equal(t, "tools", cats[0].Category)
	assert.Equal(t, 78.0, cats[0].Units)
}

type fixedState database.State

func (s fixedState) State() database.State { return database.State(s) }

func TestHealthAndReady(t *testing.T) {
	t.Parallel()

	cases := []struct {
		state     database.State
		wantReady int
	}{
		{database.StateConnecting, http.StatusServiceUnavailable},
		{database.StateFailed, http.StatusServiceUnavailable},
		{database.StateConnected, http.StatusOK},
	}
	for _, tc := range cases {
		h := &HealthController{Database: fixedState(tc.state)}
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)
		r.NoRoute(NotFound)

		w := serveJSON(t, r, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","database":"`+string(tc.state)+`"}`, w.Body.String())

		w = serveJSON(t, r, http.MethodGet, "/ready", nil, "")
		assert.Equal(t, tc.wantReady, w.Code, tc.state)

		w = serveJSON(t, r, http.MethodGet, "/nowhere", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}
