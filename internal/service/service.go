package service

import (
	"context"
	"errors"

	"github.com/jsekonopo/agriassist-sub001/internal/ai"
	"github.com/jsekonopo/agriassist-sub001/internal/config"
	"github.com/jsekonopo/agriassist-sub001/internal/db"
	"github.com/jsekonopo/agriassist-sub001/internal/email"
	"github.com/jsekonopo/agriassist-sub001/internal/notification"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/socket"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrExpired            = errors.New("invitation has expired")
	ErrInvalidInput       = errors.New("invalid input")
	ErrFarmNotFound       = errors.New("farm not found")
	ErrAlreadyResolved    = errors.New("invitation already resolved")
	ErrOwnerConflict      = errors.New("user already owns another farm")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Farm         FarmService
	Invitation   InvitationService
	Notification NotificationService
	Field        FieldService
	Planting     PlantingService
	Livestock    LivestockService
	Finance      FinanceService
	Task         TaskService
	Dashboard    DashboardService
	Advisor      AdvisorService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Redis       *db.RedisDB
	Model       ai.ModelClient
}

func NewServices(deps *ServiceDeps) *Services {
	guard := newAccessGuard(deps.Repos.UserRepo)

	// Built first so the record services can drop its cache on writes.
	dashboard := NewDashboardService(
		deps.Repos.FieldRepo,
		deps.Repos.PlantingRepo,
		deps.Repos.LivestockRepo,
		deps.Repos.TaskRepo,
		deps.Repos.FinanceRepo,
		guard,
		deps.Redis,
	)

	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo, deps.Repos.FarmRepo),
		User: NewUserService(deps.Repos.UserRepo),
		Farm: NewFarmService(
			deps.Repos.FarmRepo,
			deps.Repos.UserRepo,
			deps.NotifSvc,
			deps.EmailSvc,
			deps.Broadcaster,
		),
		Invitation: NewInvitationService(
			deps.Config,
			deps.Repos.InvitationRepo,
			deps.Repos.FarmRepo,
			deps.Repos.UserRepo,
			deps.NotifSvc,
			deps.EmailSvc,
			deps.Broadcaster,
		),
		Notification: NewNotificationService(deps.Repos.NotificationRepo),
		Field:        NewFieldService(deps.Repos.FieldRepo, guard, dashboard),
		Planting:     NewPlantingService(deps.Repos.PlantingRepo, deps.Repos.FieldRepo, guard, dashboard),
		Livestock:    NewLivestockService(deps.Repos.LivestockRepo, guard, dashboard),
		Finance:      NewFinanceService(deps.Repos.FinanceRepo, guard, dashboard),
		Task:         NewTaskService(deps.Repos.TaskRepo, guard, dashboard),
		Dashboard:    dashboard,
		Advisor:     NewAdvisorService(deps.Model, deps.Repos.FieldRepo, deps.Repos.PlantingRepo, guard),
		Broadcaster: deps.Broadcaster,
	}
}

// ============================================
// Access Guard
// ============================================

// accessGuard resolves the acting user's farm and enforces the role write
// policy shared by all record services. Viewers can read, editors and admins
// can write, owners can do everything.
type accessGuard struct {
	userRepo repository.UserRepository
}

func newAccessGuard(userRepo repository.UserRepository) *accessGuard {
	return &accessGuard{userRepo: userRepo}
}

// farmFor returns the farm the user belongs to. Every authenticated user has
// a farm, either their own or the one they joined as staff.
func (g *accessGuard) farmFor(ctx context.Context, userID string) (farmID string, user *repository.User, err error) {
	user, err = g.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrUserNotFound
	}
	if user.FarmID == nil || *user.FarmID == "" {
		return "", nil, ErrForbidden
	}
	return *user.FarmID, user, nil
}

// requireWriter is farmFor plus the write policy check.
func (g *accessGuard) requireWriter(ctx context.Context, userID string) (string, error) {
	farmID, user, err := g.farmFor(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IsFarmOwner {
		return farmID, nil
	}
	if user.FarmRole == nil || !types.StaffRole(*user.FarmRole).CanWrite() {
		return "", ErrForbidden
	}
	return farmID, nil
}
