package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jsekonopo/agriassist-sub001/internal/email"
	"github.com/jsekonopo/agriassist-sub001/internal/notification"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/socket"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// ============================================
// Farm Service
// ============================================

type FarmService interface {
	GetFarm(ctx context.Context, userID string) (*repository.Farm, error)
	UpdateFarm(ctx context.Context, userID, name string) (*repository.Farm, error)
	ListStaff(ctx context.Context, userID string) ([]*repository.StaffMember, error)
	UpdateStaffRole(ctx context.Context, actorID, targetID string, newRole types.StaffRole) error
	RemoveStaff(ctx context.Context, actorID, targetID, farmID string) error
}

type farmService struct {
	farmRepo    repository.FarmRepository
	userRepo    repository.UserRepository
	notifSvc    *notification.Service
	emailSvc    *email.Service
	broadcaster *socket.Broadcaster
}

func NewFarmService(
	farmRepo repository.FarmRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) FarmService {
	return &farmService{
		farmRepo:    farmRepo,
		userRepo:    userRepo,
		notifSvc:    notifSvc,
		emailSvc:    emailSvc,
		broadcaster: broadcaster,
	}
}

// GetFarm returns the farm the user belongs to.
func (s *farmService) GetFarm(ctx context.Context, userID string) (*repository.Farm, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FarmID == nil {
		return nil, ErrNotFound
	}

	farm, err := s.farmRepo.FindByID(ctx, *user.FarmID)
	if err != nil {
		return nil, err
	}
	if farm == nil {
		return nil, ErrNotFound
	}
	return farm, nil
}

// UpdateFarm renames the farm. Owner only.
func (s *farmService) UpdateFarm(ctx context.Context, userID, name string) (*repository.Farm, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}

	farm, err := s.GetFarm(ctx, userID)
	if err != nil {
		return nil, err
	}
	if farm.OwnerID != userID {
		return nil, ErrForbidden
	}

	farm.Name = name
	if err := s.farmRepo.Update(ctx, farm); err != nil {
		return nil, err
	}
	return farm, nil
}

// ListStaff returns all staff members of the user's farm.
func (s *farmService) ListStaff(ctx context.Context, userID string) ([]*repository.StaffMember, error) {
	farm, err := s.GetFarm(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.farmRepo.ListStaff(ctx, farm.ID)
}

// UpdateStaffRole changes a staff member's role. Owners may set any role on
// any non-owner target. Admins may act too, but may not touch another admin
// and may not promote anyone to admin.
func (s *farmService) UpdateStaffRole(ctx context.Context, actorID, targetID string, newRole types.StaffRole) error {
	if !newRole.Valid() {
		return ErrInvalidInput
	}

	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil || actor.FarmID == nil {
		return ErrForbidden
	}
	farmID := *actor.FarmID

	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return err
	}
	if farm == nil {
		return ErrNotFound
	}

	isOwner := farm.OwnerID == actorID
	isAdmin := actor.FarmRole != nil && types.StaffRole(*actor.FarmRole) == types.RoleAdmin
	if !isOwner && !isAdmin {
		return ErrForbidden
	}

	if targetID == farm.OwnerID {
		return ErrForbidden
	}

	target, err := s.farmRepo.FindStaff(ctx, farmID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}

	if isAdmin && !isOwner {
		if target.Role == types.RoleAdmin {
			return ErrForbidden
		}
		if newRole == types.RoleAdmin {
			return ErrForbidden
		}
	}

	if err := s.farmRepo.UpdateStaffRole(ctx, farmID, targetID, newRole); err != nil {
		return err
	}

	s.broadcaster.StaffRoleUpdated(farmID, targetID, string(newRole))

	go func() {
		ctx := context.Background()
		if s.notifSvc != nil {
			if err := s.notifSvc.SendRoleChanged(ctx, targetID, farmID, farm.Name, string(newRole)); err != nil {
				log.Printf("[Farm] role change notification failed: %v", err)
			}
		}
		if s.emailSvc != nil && target.User != nil {
			err := s.emailSvc.SendRoleChanged(target.User.Email, email.RoleChangedData{
				Name:     target.User.Name,
				FarmName: farm.Name,
				NewRole:  string(newRole),
			})
			if err != nil {
				log.Printf("[Farm] role change email failed: %v", err)
			}
		}
	}()

	return nil
}

// RemoveStaff removes a staff member from the owner's farm and spins off a
// personal farm for them so their account remains usable. Irreversible.
func (s *farmService) RemoveStaff(ctx context.Context, actorID, targetID, farmID string) error {
	if targetID == "" || farmID == "" {
		return ErrInvalidInput
	}
	if actorID == targetID {
		return ErrForbidden
	}

	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return err
	}
	if farm == nil {
		return ErrNotFound
	}
	if farm.OwnerID != actorID {
		return ErrForbidden
	}

	target, err := s.farmRepo.FindStaff(ctx, farmID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}

	targetUser, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if targetUser == nil {
		return ErrUserNotFound
	}

	newFarmName := fmt.Sprintf("%s's Farm", targetUser.Name)
	if _, err := s.farmRepo.RemoveStaff(ctx, farmID, targetID, newFarmName); err != nil {
		return err
	}

	s.broadcaster.StaffRemoved(farmID, targetID)

	go func() {
		ctx := context.Background()
		if s.notifSvc != nil {
			if err := s.notifSvc.SendStaffRemoved(ctx, targetID, farm.Name); err != nil {
				log.Printf("[Farm] removal notification failed: %v", err)
			}
		}
		if s.emailSvc != nil {
			err := s.emailSvc.SendStaffRemoved(targetUser.Email, email.StaffRemovedData{
				Name:     targetUser.Name,
				FarmName: farm.Name,
			})
			if err != nil {
				log.Printf("[Farm] removal email failed: %v", err)
			}
		}
	}()

	return nil
}
