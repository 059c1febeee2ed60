package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsekonopo/agriassist-sub001/internal/api/middleware"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// ============================================
// Invitation Handler
// ============================================

type InvitationHandler struct {
	invitationService service.InvitationService
}

type createInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := types.StaffRole(req.Role)
	if req.Role == "" {
		role = types.RoleViewer
	}

	inv, err := h.invitationService.Create(c.Request.Context(), userID, req.Email, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

func (h *InvitationHandler) ListByFarm(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListByFarm(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}

func (h *InvitationHandler) ListPending(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListPendingForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}

type processTokenRequest struct {
	InvitationToken string `json:"invitationToken" binding:"required"`
}

func (h *InvitationHandler) ProcessToken(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req processTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	err := h.invitationService.ProcessToken(c.Request.Context(), userID, req.InvitationToken)
	workflowResult(c, err, "Invitation accepted")
}

type invitationIDRequest struct {
	InvitationID string `json:"invitationId" binding:"required"`
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req invitationIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	err := h.invitationService.Accept(c.Request.Context(), userID, req.InvitationID)
	workflowResult(c, err, "Invitation accepted")
}

func (h *InvitationHandler) Decline(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req invitationIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	err := h.invitationService.Decline(c.Request.Context(), userID, req.InvitationID)
	workflowResult(c, err, "Invitation declined")
}

func (h *InvitationHandler) Revoke(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	err := h.invitationService.Revoke(c.Request.Context(), userID, c.Param("id"))
	workflowResult(c, err, "Invitation revoked")
}
