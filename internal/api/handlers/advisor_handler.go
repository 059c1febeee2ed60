package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsekonopo/agriassist-sub001/internal/ai"
	"github.com/jsekonopo/agriassist-sub001/internal/api/middleware"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
)

// ============================================
// Advisor Handler
// ============================================

type AdvisorHandler struct {
	advisorService service.AdvisorService
}

func (h *AdvisorHandler) DiagnosePlant(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req ai.DiagnoseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.advisorService.DiagnosePlant(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AdvisorHandler) TreatmentPlan(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req ai.TreatmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.advisorService.TreatmentPlan(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type interpretSoilRequest struct {
	FieldID string `json:"fieldId" binding:"required"`
}

func (h *AdvisorHandler) InterpretSoil(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req interpretSoilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.advisorService.InterpretSoil(c.Request.Context(), userID, req.FieldID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type optimizeRequest struct {
	Goal string `json:"goal" binding:"required"`
}

func (h *AdvisorHandler) Optimize(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.advisorService.Optimize(c.Request.Context(), userID, req.Goal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
