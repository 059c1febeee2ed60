package service

import (
	"context"
	"time"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
)

// ============================================
// Planting Service
// ============================================

type PlantingService interface {
	Create(ctx context.Context, userID string, p *repository.Planting) (*repository.Planting, error)
	Get(ctx context.Context, userID, plantingID string) (*repository.Planting, error)
	List(ctx context.Context, userID string) ([]*repository.Planting, error)
	Update(ctx context.Context, userID string, p *repository.Planting) (*repository.Planting, error)
	Delete(ctx context.Context, userID, plantingID string) error

	AddHarvest(ctx context.Context, userID string, h *repository.Harvest) (*repository.Harvest, error)
	ListHarvests(ctx context.Context, userID string) ([]*repository.Harvest, error)
	DeleteHarvest(ctx context.Context, userID, harvestID string) error
}

type plantingService struct {
	plantingRepo repository.PlantingRepository
	fieldRepo    repository.FieldRepository
	guard        *accessGuard
	dash         DashboardService
}

func NewPlantingService(plantingRepo repository.PlantingRepository, fieldRepo repository.FieldRepository, guard *accessGuard, dash DashboardService) PlantingService {
	return &plantingService{plantingRepo: plantingRepo, fieldRepo: fieldRepo, guard: guard, dash: dash}
}

func (s *plantingService) Create(ctx context.Context, userID string, p *repository.Planting) (*repository.Planting, error) {
	if p.CropName == "" {
		return nil, ErrInvalidInput
	}

	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.FarmID = farmID

	// Denormalize the field name so listings don't need a join.
	if p.FieldID != nil {
		field, err := s.fieldRepo.FindByID(ctx, *p.FieldID)
		if err != nil {
			return nil, err
		}
		if field == nil || field.FarmID != farmID {
			return nil, ErrNotFound
		}
		p.FieldName = field.Name
	}

	if err := s.plantingRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, p.FarmID)
	return p, nil
}

func (s *plantingService) Get(ctx context.Context, userID, plantingID string) (*repository.Planting, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.plantingRepo.FindByID(ctx, plantingID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.FarmID != farmID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *plantingService) List(ctx context.Context, userID string) ([]*repository.Planting, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.plantingRepo.ListByFarm(ctx, farmID)
}

func (s *plantingService) Update(ctx context.Context, userID string, p *repository.Planting) (*repository.Planting, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.plantingRepo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FarmID != farmID {
		return nil, ErrNotFound
	}

	if p.CropName != "" {
		existing.CropName = p.CropName
	}
	existing.Variety = p.Variety
	existing.SeedingDate = p.SeedingDate
	existing.PlantingDate = p.PlantingDate
	existing.Quantity = p.Quantity
	existing.QuantityUnit = p.QuantityUnit
	existing.Notes = p.Notes

	if p.FieldID != nil {
		field, err := s.fieldRepo.FindByID(ctx, *p.FieldID)
		if err != nil {
			return nil, err
		}
		if field == nil || field.FarmID != farmID {
			return nil, ErrNotFound
		}
		existing.FieldID = p.FieldID
		existing.FieldName = field.Name
	}

	if err := s.plantingRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *plantingService) Delete(ctx context.Context, userID, plantingID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.plantingRepo.FindByID(ctx, plantingID)
	if err != nil {
		return err
	}
	if existing == nil || existing.FarmID != farmID {
		return ErrNotFound
	}

	if err := s.plantingRepo.Delete(ctx, plantingID); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return nil
}

func (s *plantingService) AddHarvest(ctx context.Context, userID string, h *repository.Harvest) (*repository.Harvest, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}
	h.FarmID = farmID

	if h.PlantingID != nil {
		planting, err := s.plantingRepo.FindByID(ctx, *h.PlantingID)
		if err != nil {
			return nil, err
		}
		if planting == nil || planting.FarmID != farmID {
			return nil, ErrNotFound
		}
		h.CropName = planting.CropName
	}
	if h.CropName == "" {
		return nil, ErrInvalidInput
	}
	if h.HarvestDate.IsZero() {
		h.HarvestDate = time.Now()
	}

	if err := s.plantingRepo.CreateHarvest(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *plantingService) ListHarvests(ctx context.Context, userID string) ([]*repository.Harvest, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.plantingRepo.ListHarvests(ctx, farmID)
}

func (s *plantingService) DeleteHarvest(ctx context.Context, userID, harvestID string) error {
	if _, err := s.guard.requireWriter(ctx, userID); err != nil {
		return err
	}
	return s.plantingRepo.DeleteHarvest(ctx, harvestID)
}
