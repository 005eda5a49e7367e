package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory-server/database"
)

// StateReporter exposes the database connection state.
type StateReporter interface {
	State() database.State
}

type HealthController struct {
	Database StateReporter
}

// Health always answers 200; the database state shows degraded service.
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": h.Database.State()})
}

// Ready answers 503 until the database connection is established.
func (h *HealthController) Ready(c *gin.Context) {
	state := h.Database.State()
	if state != database.StateConnected {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "database": state})
}

// NotFound answers unregistered routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
