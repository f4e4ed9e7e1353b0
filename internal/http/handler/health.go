package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pken.app/survey-gateway/internal/cache"
)

type HealthInfo struct {
	Env          string
	HasLIFFID    bool
	LIFFEnabled  bool
	HasWPBase    bool
	CacheEnabled bool
}

type HealthHandler struct {
	info  HealthInfo
	cache cache.HistoryCache
}

func NewHealthHandler(info HealthInfo, historyCache cache.HistoryCache) *HealthHandler {
	return &HealthHandler{info: info, cache: historyCache}
}

// Check always answers 200; a failing cache only degrades the service.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	cacheStatus := "disabled"

	if h.info.CacheEnabled {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "cache ping failed", "error", err)
			status = "degraded"
			cacheStatus = "unavailable"
		} else {
			cacheStatus = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"cache":  cacheStatus,
		"env": gin.H{
			"has_liff_id":  h.info.HasLIFFID,
			"liff_enabled": h.info.LIFFEnabled,
			"has_wp_base":  h.info.HasWPBase,
			"env":          h.info.Env,
		},
	})
}
