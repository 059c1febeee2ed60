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
// Planting Handler
// ============================================

type PlantingHandler struct {
	plantingService service.PlantingService
}

type plantingRequest struct {
	FieldID      *string    `json:"fieldId"`
	CropName     string     `json:"cropName" binding:"required"`
	Variety      *string    `json:"variety"`
	SeedingDate  *time.Time `json:"seedingDate"`
	PlantingDate *time.Time `json:"plantingDate"`
	Quantity     *float64   `json:"quantity"`
	QuantityUnit *string    `json:"quantityUnit"`
	Notes        *string    `json:"notes"`
}

func (r *plantingRequest) toEntity(id string) *repository.Planting {
	return &repository.Planting{
		ID:           id,
		FieldID:      r.FieldID,
		CropName:     r.CropName,
		Variety:      r.Variety,
		SeedingDate:  r.SeedingDate,
		PlantingDate: r.PlantingDate,
		Quantity:     r.Quantity,
		QuantityUnit: r.QuantityUnit,
		Notes:        r.Notes,
	}
}

func (h *PlantingHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req plantingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	planting, err := h.plantingService.Create(c.Request.Context(), userID, req.toEntity(""))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, planting)
}

func (h *PlantingHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	planting, err := h.plantingService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, planting)
}

func (h *PlantingHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	plantings, err := h.plantingService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plantings)
}

func (h *PlantingHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req plantingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	planting, err := h.plantingService.Update(c.Request.Context(), userID, req.toEntity(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, planting)
}

func (h *PlantingHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.plantingService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ============================================
// Harvests
// ============================================

type harvestRequest struct {
	PlantingID    *string    `json:"plantingId"`
	CropName      string     `json:"cropName"`
	HarvestDate   *time.Time `json:"harvestDate"`
	YieldQuantity *float64   `json:"yieldQuantity"`
	YieldUnit     *string    `json:"yieldUnit"`
	Notes         *string    `json:"notes"`
}

func (h *PlantingHandler) AddHarvest(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req harvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	harvest := &repository.Harvest{
		PlantingID:    req.PlantingID,
		CropName:      req.CropName,
		YieldQuantity: req.YieldQuantity,
		YieldUnit:     req.YieldUnit,
		Notes:         req.Notes,
	}
	if req.HarvestDate != nil {
		harvest.HarvestDate = *req.HarvestDate
	}

	created, err := h.plantingService.AddHarvest(c.Request.Context(), userID, harvest)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *PlantingHandler) ListHarvests(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	harvests, err := h.plantingService.ListHarvests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, harvests)
}

func (h *PlantingHandler) DeleteHarvest(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.plantingService.DeleteHarvest(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
