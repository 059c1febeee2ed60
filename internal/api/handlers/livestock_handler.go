package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsekonopo/agriassist-sub001/internal/api/middleware"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
)

// ============================================
// Livestock Handler
// ============================================

type LivestockHandler struct {
	livestockService service.LivestockService
}

type animalRequest struct {
	Tag       string     `json:"tag" binding:"required"`
	Species   string     `json:"species" binding:"required"`
	Breed     *string    `json:"breed"`
	BirthDate *time.Time `json:"birthDate"`
	Notes     *string    `json:"notes"`
}

func (h *LivestockHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req animalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	animal, err := h.livestockService.Create(c.Request.Context(), userID, &repository.Animal{
		Tag:       req.Tag,
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, animal)
}

func (h *LivestockHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	animal, err := h.livestockService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, animal)
}

func (h *LivestockHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	animals, err := h.livestockService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, animals)
}

func (h *LivestockHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req animalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	animal, err := h.livestockService.Update(c.Request.Context(), userID, &repository.Animal{
		ID:        c.Param("id"),
		Tag:       req.Tag,
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, animal)
}

func (h *LivestockHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.livestockService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ============================================
// Health Logs
// ============================================

type healthLogRequest struct {
	LogDate   *time.Time `json:"logDate"`
	Condition string     `json:"condition" binding:"required"`
	Treatment *string    `json:"treatment"`
	Notes     *string    `json:"notes"`
}

func (h *LivestockHandler) AddHealthLog(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req healthLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logEntry := &repository.HealthLog{
		AnimalID:  c.Param("id"),
		Condition: req.Condition,
		Treatment: req.Treatment,
		Notes:     req.Notes,
	}
	if req.LogDate != nil {
		logEntry.LogDate = *req.LogDate
	}

	created, err := h.livestockService.AddHealthLog(c.Request.Context(), userID, logEntry)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *LivestockHandler) ListHealthLogs(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	logs, err := h.livestockService.ListHealthLogs(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *LivestockHandler) DeleteHealthLog(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.livestockService.DeleteHealthLog(c.Request.Context(), userID, c.Param("id"), c.Param("logId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
