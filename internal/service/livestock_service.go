package service

import (
	"context"
	"time"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
)

// ============================================
// Livestock Service
// ============================================

type LivestockService interface {
	Create(ctx context.Context, userID string, a *repository.Animal) (*repository.Animal, error)
	Get(ctx context.Context, userID, animalID string) (*repository.Animal, error)
	List(ctx context.Context, userID string) ([]*repository.Animal, error)
	Update(ctx context.Context, userID string, a *repository.Animal) (*repository.Animal, error)
	Delete(ctx context.Context, userID, animalID string) error

	AddHealthLog(ctx context.Context, userID string, l *repository.HealthLog) (*repository.HealthLog, error)
	ListHealthLogs(ctx context.Context, userID, animalID string) ([]*repository.HealthLog, error)
	DeleteHealthLog(ctx context.Context, userID, animalID, logID string) error
}

type livestockService struct {
	livestockRepo repository.LivestockRepository
	guard         *accessGuard
	dash          DashboardService
}

func NewLivestockService(livestockRepo repository.LivestockRepository, guard *accessGuard, dash DashboardService) LivestockService {
	return &livestockService{livestockRepo: livestockRepo, guard: guard, dash: dash}
}

func (s *livestockService) Create(ctx context.Context, userID string, a *repository.Animal) (*repository.Animal, error) {
	if a.Tag == "" || a.Species == "" {
		return nil, ErrInvalidInput
	}

	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.FarmID = farmID
	if err := s.livestockRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return a, nil
}

func (s *livestockService) Get(ctx context.Context, userID, animalID string) (*repository.Animal, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := s.livestockRepo.FindByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.FarmID != farmID {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *livestockService) List(ctx context.Context, userID string) ([]*repository.Animal, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.livestockRepo.ListByFarm(ctx, farmID)
}

func (s *livestockService) Update(ctx context.Context, userID string, a *repository.Animal) (*repository.Animal, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.livestockRepo.FindByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FarmID != farmID {
		return nil, ErrNotFound
	}

	if a.Tag != "" {
		existing.Tag = a.Tag
	}
	if a.Species != "" {
		existing.Species = a.Species
	}
	existing.Breed = a.Breed
	existing.BirthDate = a.BirthDate
	existing.Notes = a.Notes

	if err := s.livestockRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *livestockService) Delete(ctx context.Context, userID, animalID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.livestockRepo.FindByID(ctx, animalID)
	if err != nil {
		return err
	}
	if existing == nil || existing.FarmID != farmID {
		return ErrNotFound
	}

	if err := s.livestockRepo.Delete(ctx, animalID); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return nil
}

func (s *livestockService) AddHealthLog(ctx context.Context, userID string, l *repository.HealthLog) (*repository.HealthLog, error) {
	if l.Condition == "" {
		return nil, ErrInvalidInput
	}

	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	animal, err := s.livestockRepo.FindByID(ctx, l.AnimalID)
	if err != nil {
		return nil, err
	}
	if animal == nil || animal.FarmID != farmID {
		return nil, ErrNotFound
	}

	l.FarmID = farmID
	l.AnimalTag = animal.Tag
	if l.LogDate.IsZero() {
		l.LogDate = time.Now()
	}

	if err := s.livestockRepo.CreateHealthLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *livestockService) ListHealthLogs(ctx context.Context, userID, animalID string) ([]*repository.HealthLog, error) {
	if _, err := s.Get(ctx, userID, animalID); err != nil {
		return nil, err
	}
	return s.livestockRepo.ListHealthLogs(ctx, animalID)
}

func (s *livestockService) DeleteHealthLog(ctx context.Context, userID, animalID, logID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	animal, err := s.livestockRepo.FindByID(ctx, animalID)
	if err != nil {
		return err
	}
	if animal == nil || animal.FarmID != farmID {
		return ErrNotFound
	}

	return s.livestockRepo.DeleteHealthLog(ctx, logID)
}
