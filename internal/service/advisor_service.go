package service

import (
	"context"
	"fmt"

	"github.com/jsekonopo/agriassist-sub001/internal/ai"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
)

// ============================================
// Advisor Service
// ============================================

// ErrAdvisorDisabled is returned when no model API key is configured.
var ErrAdvisorDisabled = fmt.Errorf("advisor is not configured")

type AdvisorService interface {
	DiagnosePlant(ctx context.Context, userID string, in ai.DiagnoseInput) (*ai.DiagnoseResult, error)
	TreatmentPlan(ctx context.Context, userID string, in ai.TreatmentInput) (*ai.TreatmentResult, error)
	InterpretSoil(ctx context.Context, userID, fieldID string) (*ai.SoilResult, error)
	Optimize(ctx context.Context, userID, goal string) (*ai.OptimizeResult, error)
}

type advisorService struct {
	model        ai.ModelClient
	fieldRepo    repository.FieldRepository
	plantingRepo repository.PlantingRepository
	guard        *accessGuard
}

func NewAdvisorService(
	model ai.ModelClient,
	fieldRepo repository.FieldRepository,
	plantingRepo repository.PlantingRepository,
	guard *accessGuard,
) AdvisorService {
	return &advisorService{
		model:        model,
		fieldRepo:    fieldRepo,
		plantingRepo: plantingRepo,
		guard:        guard,
	}
}

func (s *advisorService) ready() error {
	if s.model == nil {
		return ErrAdvisorDisabled
	}
	return nil
}

func (s *advisorService) DiagnosePlant(ctx context.Context, userID string, in ai.DiagnoseInput) (*ai.DiagnoseResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if in.Description == "" {
		return nil, ErrInvalidInput
	}
	if _, _, err := s.guard.farmFor(ctx, userID); err != nil {
		return nil, err
	}
	return ai.DiagnosePlant(ctx, s.model, in)
}

func (s *advisorService) TreatmentPlan(ctx context.Context, userID string, in ai.TreatmentInput) (*ai.TreatmentResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if in.Diagnosis == "" {
		return nil, ErrInvalidInput
	}
	if _, _, err := s.guard.farmFor(ctx, userID); err != nil {
		return nil, err
	}
	return ai.SuggestTreatment(ctx, s.model, in)
}

const advisorSampleLimit = 10

// InterpretSoil pulls the field's recent soil tests into the prompt.
func (s *advisorService) InterpretSoil(ctx context.Context, userID, fieldID string) (*ai.SoilResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	field, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if field == nil || field.FarmID != farmID {
		return nil, ErrNotFound
	}

	tests, err := s.fieldRepo.RecentSoilTests(ctx, fieldID, advisorSampleLimit)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, ErrInvalidInput
	}

	samples := make([]ai.SoilSample, 0, len(tests))
	for _, t := range tests {
		samples = append(samples, ai.SoilSample{
			Date:          t.TestDate.Format("2006-01-02"),
			PH:            t.PH,
			OrganicMatter: t.OrganicMatter,
			Nitrogen:      t.Nitrogen,
			Phosphorus:    t.Phosphorus,
			Potassium:     t.Potassium,
		})
	}

	return ai.InterpretSoil(ctx, s.model, field.Name, samples)
}

// Optimize pulls recent plantings and harvests into the prompt.
func (s *advisorService) Optimize(ctx context.Context, userID, goal string) (*ai.OptimizeResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if goal == "" {
		return nil, ErrInvalidInput
	}

	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	plantings, err := s.plantingRepo.ListByFarm(ctx, farmID)
	if err != nil {
		return nil, err
	}
	harvests, err := s.plantingRepo.RecentHarvests(ctx, farmID, advisorSampleLimit)
	if err != nil {
		return nil, err
	}

	plantingRecords := make([]ai.CropRecord, 0, len(plantings))
	for i, p := range plantings {
		if i >= advisorSampleLimit {
			break
		}
		detail := fmt.Sprintf("field %s", p.FieldName)
		if p.PlantingDate != nil {
			detail = fmt.Sprintf("%s, planted %s", detail, p.PlantingDate.Format("2006-01-02"))
		}
		plantingRecords = append(plantingRecords, ai.CropRecord{CropName: p.CropName, Detail: detail})
	}

	harvestRecords := make([]ai.CropRecord, 0, len(harvests))
	for _, h := range harvests {
		detail := fmt.Sprintf("harvested %s", h.HarvestDate.Format("2006-01-02"))
		if h.YieldQuantity != nil {
			unit := ""
			if h.YieldUnit != nil {
				unit = *h.YieldUnit
			}
			detail = fmt.Sprintf("%s, yield %.2f %s", detail, *h.YieldQuantity, unit)
		}
		harvestRecords = append(harvestRecords, ai.CropRecord{CropName: h.CropName, Detail: detail})
	}

	return ai.SuggestOptimizations(ctx, s.model, goal, plantingRecords, harvestRecords)
}
