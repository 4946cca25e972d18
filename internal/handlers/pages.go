package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/external"
	"github.com/monocle-dev/carbontrack/internal/utils"
)

func (h *Handler) Index(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "index.html", nil)
}

func (h *Handler) Dashboard(ctx *gin.Context) {
	city := utils.GetSession(ctx).City

	if city == "" {
		city = external.DefaultCity
	}

	h.render(ctx, http.StatusOK, "dashboard.html", gin.H{"City": city})
}
