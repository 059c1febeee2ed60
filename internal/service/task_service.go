package service

import (
	"context"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// ============================================
// Task Service
// ============================================

type TaskService interface {
	Create(ctx context.Context, userID string, t *repository.Task) (*repository.Task, error)
	Get(ctx context.Context, userID, taskID string) (*repository.Task, error)
	List(ctx context.Context, userID string) ([]*repository.Task, error)
	Update(ctx context.Context, userID string, t *repository.Task) (*repository.Task, error)
	Complete(ctx context.Context, userID, taskID string) (*repository.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type taskService struct {
	taskRepo repository.TaskRepository
	guard    *accessGuard
	dash     DashboardService
}

func NewTaskService(taskRepo repository.TaskRepository, guard *accessGuard, dash DashboardService) TaskService {
	return &taskService{taskRepo: taskRepo, guard: guard, dash: dash}
}

func (s *taskService) Create(ctx context.Context, userID string, t *repository.Task) (*repository.Task, error) {
	if t.Title == "" {
		return nil, ErrInvalidInput
	}
	if t.Status == "" {
		t.Status = types.TaskTodo
	}
	if !types.ValidTaskStatus(t.Status) {
		return nil, ErrInvalidInput
	}

	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	t.FarmID = farmID
	t.CreatedBy = &userID

	if err := s.taskRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return t, nil
}

func (s *taskService) Get(ctx context.Context, userID, taskID string) (*repository.Task, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	t, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.FarmID != farmID {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *taskService) List(ctx context.Context, userID string) ([]*repository.Task, error) {
	farmID, _, err := s.guard.farmFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.taskRepo.ListByFarm(ctx, farmID)
}

func (s *taskService) Update(ctx context.Context, userID string, t *repository.Task) (*repository.Task, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.taskRepo.FindByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FarmID != farmID {
		return nil, ErrNotFound
	}

	if t.Title != "" {
		existing.Title = t.Title
	}
	if t.Status != "" {
		if !types.ValidTaskStatus(t.Status) {
			return nil, ErrInvalidInput
		}
		existing.Status = t.Status
	}
	existing.Notes = t.Notes
	existing.DueDate = t.DueDate
	existing.AssigneeID = t.AssigneeID

	if err := s.taskRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return existing, nil
}

// Complete marks a task done without requiring the caller to resend the
// whole record.
func (s *taskService) Complete(ctx context.Context, userID, taskID string) (*repository.Task, error) {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FarmID != farmID {
		return nil, ErrNotFound
	}

	existing.Status = types.TaskDone
	if err := s.taskRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return existing, nil
}

func (s *taskService) Delete(ctx context.Context, userID, taskID string) error {
	farmID, err := s.guard.requireWriter(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if existing == nil || existing.FarmID != farmID {
		return ErrNotFound
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.dash, farmID)
	return nil
}
