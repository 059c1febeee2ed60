package service

import (
	"context"
	"time"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
)

// ============================================
// Field Service
// ============================================

type FieldService interface {
	Create(ctx context.Context, userID string, f *repository.Field) (*repository.Field, error)
	Get(ctx context.Context, userID, fieldID string) (*repository.Field, error)
	List(ctx context.Context, userID string) ([]*repository.Field, error)
	Update(ctx context.Context, userID string, f *repository.Field) (*repository.Field, error)
	Delete(ctx context.Context, userID, fieldID string) error

	AddSoilTest(ctx context.Context, userID string, st *repository.SoilTest) (*repository.SoilTest, error)
	ListSoilTests(ctx context.Context, userID, fieldID string) ([]*repository.SoilTest, error)
	LatestSoilTest(ctx context.Context, userID, fieldID string) (*repository.SoilTest, error)
	DeleteSoilTest(ctx context.Context, userID, fieldID, soilTestID string) error
}

type fieldService struct {
	fieldRepo repository.FieldRepository
	guard     *accessGuard
	dash      DashboardService
}

func NewFieldService(fieldRepo repository.FieldRepository, guard *accessGuard, dash DashboardService) FieldService {
	return &fieldService{fieldRepo: fieldRepo, guard: guard, dash: dash}
}

func (s *fieldService) Create(ctx context.Context, userID string, f *repository.Field) (*repository.Field, error) {
	if f.Name == "" {
		return nil, ErrInvalidInput
	}

	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	f.FarmID = farmID
	if err := s.fieldRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return f, nil
}

func (s *fieldService) Get(ctx context.Context, userID, fieldID string) (*repository.Field, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	f, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.FarmID != farmID {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *fieldService) List(ctx context.Context, userID string) ([]*repository.Field, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.fieldRepo.ListByFarm(ctx, farmID)
}

func (s *fieldService) Update(ctx context.Context, userID string, f *repository.Field) (*repository.Field, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.fieldRepo.FindByID(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FarmID != farmID {
		return nil, ErrNotFound
	}

	if f.Name != "" {
		existing.Name = f.Name
	}
	existing.SizeAcres = f.SizeAcres
	existing.Notes = f.Notes

	if err := s.fieldRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *fieldService) Delete(ctx context.Context, userID, fieldID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		return err
	}
	if existing == nil || existing.FarmID != farmID {
		return ErrNotFound
	}

	if err := s.fieldRepo.Delete(ctx, fieldID); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return nil
}

func (s *fieldService) AddSoilTest(ctx context.Context, userID string, st *repository.SoilTest) (*repository.SoilTest, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	field, err := s.fieldRepo.FindByID(ctx, st.FieldID)
	if err != nil {
		return nil, err
	}
	if field == nil || field.FarmID != farmID {
		return nil, ErrNotFound
	}

	st.FarmID = farmID
	if st.TestDate.IsZero() {
		st.TestDate = time.Now()
	}

	if err := s.fieldRepo.CreateSoilTest(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *fieldService) ListSoilTests(ctx context.Context, userID, fieldID string) ([]*repository.SoilTest, error) {
	if _, err := s.Get(ctx, userID, fieldID); err != nil {
		return nil, err
	}
	return s.fieldRepo.ListSoilTests(ctx, fieldID)
}

func (s *fieldService) LatestSoilTest(ctx context.Context, userID, fieldID string) (*repository.SoilTest, error) {
	if _, err := s.Get(ctx, userID, fieldID); err != nil {
		return nil, err
	}

	tests, err := s.fieldRepo.RecentSoilTests(ctx, fieldID, 1)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, ErrNotFound
	}
	return tests[0], nil
}

func (s *fieldService) DeleteSoilTest(ctx context.Context, userID, fieldID, soilTestID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	field, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		return err
	}
	if field == nil || field.FarmID != farmID {
		return ErrNotFound
	}

	return s.fieldRepo.DeleteSoilTest(ctx, soilTestID)
}
