package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jsekonopo/agriassist-sub001/internal/db"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
)

// ============================================
// Dashboard Service
// ============================================

// DashboardSummary aggregates the headline counts shown on the farm overview.
type DashboardSummary struct {
	FieldCount    int                        `json:"fieldCount"`
	PlantingCount int                        `json:"plantingCount"`
	AnimalCount   int                        `json:"animalCount"`
	OpenTasks     int                        `json:"openTasks"`
	Finance       *repository.FinanceSummary `json:"finance"`
}

type DashboardService interface {
	Summary(ctx context.Context, userID string) (*DashboardSummary, error)
	Invalidate(ctx context.Context, farmID string)
}

type dashboardService struct {
	fieldRepo     repository.FieldRepository
	plantingRepo  repository.PlantingRepository
	livestockRepo repository.LivestockRepository
	taskRepo      repository.TaskRepository
	financeRepo   repository.FinanceRepository
	guard         *accessGuard
	cache         *db.RedisDB
}

const dashboardCacheTTL = time.Minute

func NewDashboardService(
	fieldRepo repository.FieldRepository,
	plantingRepo repository.PlantingRepository,
	livestockRepo repository.LivestockRepository,
	taskRepo repository.TaskRepository,
	financeRepo repository.FinanceRepository,
	guard *accessGuard,
	cache *db.RedisDB,
) DashboardService {
	return &dashboardService{
		fieldRepo:     fieldRepo,
		plantingRepo:  plantingRepo,
		livestockRepo: livestockRepo,
		taskRepo:      taskRepo,
		financeRepo:   financeRepo,
		guard:         guard,
		cache:         cache,
	}
}

func dashboardKey(farmID string) string {
	return fmt.Sprintf("dashboard:%s", farmID)
}

// Summary returns cached counts when Redis is available, recomputing on miss.
func (s *dashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached DashboardSummary
		if err := s.cache.GetCache(ctx, dashboardKey(farmID), &cached); err == nil {
			return &cached, nil
		}
	}

	summary := &DashboardSummary{}

	if summary.FieldCount, err = s.fieldRepo.CountByFarm(ctx, farmID); err != nil {
		return nil, err
	}
	if summary.PlantingCount, err = s.plantingRepo.CountByFarm(ctx, farmID); err != nil {
		return nil, err
	}
	if summary.AnimalCount, err = s.livestockRepo.CountByFarm(ctx, farmID); err != nil {
		return nil, err
	}
	if summary.OpenTasks, err = s.taskRepo.CountOpenByFarm(ctx, farmID); err != nil {
		return nil, err
	}
	if summary.Finance, err = s.financeRepo.Summary(ctx, farmID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetCache(ctx, dashboardKey(farmID), summary, dashboardCacheTTL)
	}

	return summary, nil
}

// Invalidate drops the cached summary for a farm after a record mutation.
func (s *dashboardService) Invalidate(ctx context.Context, farmID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateCache(ctx, dashboardKey(farmID))
	}
}

// invalidateDashboard is the nil-safe hook the record services call after a
// successful write.
func invalidateDashboard(ctx context.Context, d DashboardService, farmID string) {
	if d != nil {
		d.Invalidate(ctx, farmID)
	}
}
