package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsekonopo/agriassist-sub001/internal/api/middleware"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
)

// ============================================
// Dashboard Handler
// ============================================

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
