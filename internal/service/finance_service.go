package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
)

// ============================================
// Finance Service
// ============================================

type FinanceService interface {
	Create(ctx context.Context, userID string, e *repository.FinanceEntry) (*repository.FinanceEntry, error)
	List(ctx context.Context, userID, kind string) ([]*repository.FinanceEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Summary(ctx context.Context, userID string) (*repository.FinanceSummary, error)
}

type financeService struct {
	financeRepo repository.FinanceRepository
	guard       *accessGuard
	dash        DashboardService
}

func NewFinanceService(financeRepo repository.FinanceRepository, guard *accessGuard, dash DashboardService) FinanceService {
	return &financeService{financeRepo: financeRepo, guard: guard, dash: dash}
}

func (s *financeService) Create(ctx context.Context, userID string, e *repository.FinanceEntry) (*repository.FinanceEntry, error) {
	if e.Kind != repository.FinanceExpense && e.Kind != repository.FinanceIncome {
		return nil, ErrInvalidInput
	}
	if e.Description == "" {
		return nil, ErrInvalidInput
	}
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidInput
	}

	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.FarmID = farmID
	if e.EntryDate.IsZero() {
		e.EntryDate = time.Now()
	}

	if err := s.financeRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, e.FarmID)
	return e, nil
}

// List returns entries for the caller's farm, optionally filtered by kind.
func (s *financeService) List(ctx context.Context, userID, kind string) ([]*repository.FinanceEntry, error) {
	if kind != "" && kind != repository.FinanceExpense && kind != repository.FinanceIncome {
		return nil, ErrInvalidInput
	}

	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.financeRepo.ListByFarm(ctx, farmID, kind)
}

func (s *financeService) Delete(ctx context.Context, userID, entryID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.financeRepo.FindByID(ctx, entryID)
	if err != nil {
		return err
	}
	if existing == nil || existing.FarmID != farmID {
		return ErrNotFound
	}

	if err := s.financeRepo.Delete(ctx, entryID); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return nil
}

func (s *financeService) Summary(ctx context.Context, userID string) (*repository.FinanceSummary, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.financeRepo.Summary(ctx, farmID)
}
