package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	*Deps
}

func NewHealthHandler(d *Deps) *HealthHandler {
	return &HealthHandler{Deps: d}
}

// Check - /api/healthcheck
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Log.WithError(err).Error("health check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": h.publicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ClearCache - POST /api/cache/clear, optional key form value
func (h *HealthHandler) ClearCache(c *gin.Context) {
	key := strings.TrimSpace(c.PostForm("key"))
	if err := h.Feed.Clear(c.Request.Context(), key); err != nil {
		h.jsonError(c, err)
		return
	}
	msg := "Cache cleared"
	if key != "" {
		msg = "Cache key " + key + " cleared"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}
