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
// Field Handler
// ============================================

type FieldHandler struct {
	fieldService service.FieldService
}

type fieldRequest struct {
	Name      string   `json:"name" binding:"required"`
	SizeAcres *float64 `json:"sizeAcres"`
	Notes     *string  `json:"notes"`
}

func (h *FieldHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := h.fieldService.Create(c.Request.Context(), userID, &repository.Field{
		Name:      req.Name,
		SizeAcres: req.SizeAcres,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, field)
}

func (h *FieldHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	field, err := h.fieldService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, field)
}

func (h *FieldHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	fields, err := h.fieldService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, fields)
}

func (h *FieldHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := h.fieldService.Update(c.Request.Context(), userID, &repository.Field{
		ID:        c.Param("id"),
		Name:      req.Name,
		SizeAcres: req.SizeAcres,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, field)
}

func (h *FieldHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.fieldService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ============================================
// Soil Tests
// ============================================

type soilTestRequest struct {
	TestDate      *time.Time `json:"testDate"`
	PH            *float64   `json:"ph"`
	OrganicMatter *float64   `json:"organicMatter"`
	Nitrogen      *float64   `json:"nitrogen"`
	Phosphorus    *float64   `json:"phosphorus"`
	Potassium     *float64   `json:"potassium"`
	Notes         *string    `json:"notes"`
}

func (h *FieldHandler) AddSoilTest(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req soilTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := &repository.SoilTest{
		FieldID:       c.Param("id"),
		PH:            req.PH,
		OrganicMatter: req.OrganicMatter,
		Nitrogen:      req.Nitrogen,
		Phosphorus:    req.Phosphorus,
		Potassium:     req.Potassium,
		Notes:         req.Notes,
	}
	if req.TestDate != nil {
		st.TestDate = *req.TestDate
	}

	created, err := h.fieldService.AddSoilTest(c.Request.Context(), userID, st)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *FieldHandler) ListSoilTests(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	tests, err := h.fieldService.ListSoilTests(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

func (h *FieldHandler) LatestSoilTest(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	test, err := h.fieldService.LatestSoilTest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

func (h *FieldHandler) DeleteSoilTest(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.fieldService.DeleteSoilTest(c.Request.Context(), userID, c.Param("id"), c.Param("soilTestId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
