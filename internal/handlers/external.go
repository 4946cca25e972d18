package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/external"
	"github.com/monocle-dev/carbontrack/internal/logging"
)

func (h *Handler) Weather(ctx *gin.Context) {
	city := strings.TrimSpace(ctx.Query("city"))

	if city == "" {
		city = external.DefaultCity
	}

	payload, err := h.weather.Weather(ctx.Request.Context(), city)

	if err != nil {
		logging.Log.WithError(err).WithField("city", city).Warn("weather lookup failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch weather data"})
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

func (h *Handler) News(ctx *gin.Context) {
	city := strings.TrimSpace(ctx.Query("city"))

	if city == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "City is required"})
		return
	}

	articles, err := h.news.Latest(ctx.Request.Context(), city)

	if err != nil {
		logging.Log.WithError(err).WithField("city", city).Warn("news lookup failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch news"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": articles})
}
