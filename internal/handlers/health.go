package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	status, message, code := "ok", "CarbonTrack is running", http.StatusOK

	sqlDB, err := h.store.DB().DB()

	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}

	if err != nil {
		_ = ctx.Error(err)
		status, message, code = "unavailable", "Database is unreachable", http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
