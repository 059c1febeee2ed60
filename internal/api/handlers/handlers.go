package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsekonopo/agriassist-sub001/internal/notification"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Farm         *FarmHandler
	Invitation   *InvitationHandler
	Notification *NotificationHandler
	Field        *FieldHandler
	Planting     *PlantingHandler
	Livestock    *LivestockHandler
	Finance      *FinanceHandler
	Task         *TaskHandler
	Dashboard    *DashboardHandler
	Advisor      *AdvisorHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, notifSvc *notification.Service) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		User:         &UserHandler{userService: services.User},
		Farm:         &FarmHandler{farmService: services.Farm},
		Invitation:   &InvitationHandler{invitationService: services.Invitation},
		Notification: &NotificationHandler{notificationService: services.Notification, notifSvc: notifSvc},
		Field:        &FieldHandler{fieldService: services.Field},
		Planting:     &PlantingHandler{plantingService: services.Planting},
		Livestock:    &LivestockHandler{livestockService: services.Livestock},
		Finance:      &FinanceHandler{financeService: services.Finance},
		Task:         &TaskHandler{taskService: services.Task},
		Dashboard:    &DashboardHandler{dashboardService: services.Dashboard},
		Advisor:      &AdvisorHandler{advisorService: services.Advisor},
	}
}

// ============================================
// Error Mapping
// ============================================

// respondError maps service sentinel errors onto the HTTP taxonomy.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrFarmNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAlreadyResolved), errors.Is(err, service.ErrOwnerConflict), errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrExpired), errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrAdvisorDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// workflowResult is the {success, message} envelope the farm workflow
// endpoints return on both success and guard failure.
func workflowResult(c *gin.Context, err error, okMessage string) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": okMessage})
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrFarmNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAlreadyResolved), errors.Is(err, service.ErrOwnerConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrExpired), errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	default:
		c.Error(err)
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}
