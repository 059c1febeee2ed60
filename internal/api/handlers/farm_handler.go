package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsekonopo/agriassist-sub001/internal/api/middleware"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// ============================================
// Farm Handler
// ============================================

type FarmHandler struct {
	farmService service.FarmService
}

func (h *FarmHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	farm, err := h.farmService.GetFarm(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, farm)
}

type updateFarmRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *FarmHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req updateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	farm, err := h.farmService.UpdateFarm(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, farm)
}

func (h *FarmHandler) ListStaff(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	staff, err := h.farmService.ListStaff(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

type updateStaffRoleRequest struct {
	StaffUIDToUpdate string `json:"staffUidToUpdate" binding:"required"`
	NewRole          string `json:"newRole" binding:"required"`
}

func (h *FarmHandler) UpdateStaffRole(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req updateStaffRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	err := h.farmService.UpdateStaffRole(c.Request.Context(), userID, req.StaffUIDToUpdate, types.StaffRole(req.NewRole))
	workflowResult(c, err, "Staff role updated")
}

type removeStaffRequest struct {
	StaffUIDToRemove string `json:"staffUidToRemove" binding:"required"`
	OwnerUID         string `json:"ownerUid"`
	OwnerFarmID      string `json:"ownerFarmId" binding:"required"`
}

func (h *FarmHandler) RemoveStaff(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req removeStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// The authenticated user is the acting owner regardless of what the
	// body claims.
	if req.OwnerUID != "" && req.OwnerUID != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
		return
	}

	err := h.farmService.RemoveStaff(c.Request.Context(), userID, req.StaffUIDToRemove, req.OwnerFarmID)
	workflowResult(c, err, "Staff member removed")
}
