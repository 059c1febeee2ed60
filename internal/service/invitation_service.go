package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jsekonopo/agriassist-sub001/internal/config"
	"github.com/jsekonopo/agriassist-sub001/internal/email"
	"github.com/jsekonopo/agriassist-sub001/internal/notification"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/socket"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// ============================================
// Invitation Service
// ============================================

type InvitationService interface {
	Create(ctx context.Context, inviterID, inviteeEmail string, role types.StaffRole) (*repository.Invitation, error)
	ListByFarm(ctx context.Context, userID string) ([]*repository.Invitation, error)
	ListPendingForUser(ctx context.Context, userID string) ([]*repository.Invitation, error)
	ProcessToken(ctx context.Context, userID, token string) error
	Accept(ctx context.Context, userID, invitationID string) error
	Decline(ctx context.Context, userID, invitationID string) error
	Revoke(ctx context.Context, userID, invitationID string) error
	ExpireOverdue(ctx context.Context) (int, error)
}

type invitationService struct {
	cfg            *config.Config
	invitationRepo repository.InvitationRepository
	farmRepo       repository.FarmRepository
	userRepo       repository.UserRepository
	notifSvc       *notification.Service
	emailSvc       *email.Service
	broadcaster    *socket.Broadcaster
}

func NewInvitationService(
	cfg *config.Config,
	invitationRepo repository.InvitationRepository,
	farmRepo repository.FarmRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) InvitationService {
	return &invitationService{
		cfg:            cfg,
		invitationRepo: invitationRepo,
		farmRepo:       farmRepo,
		userRepo:       userRepo,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
		broadcaster:    broadcaster,
	}
}

// Create issues a pending invitation for an email address. Only the farm
// owner can invite. A duplicate pending invitation for the same farm and
// email is a conflict.
func (s *invitationService) Create(ctx context.Context, inviterID, inviteeEmail string, role types.StaffRole) (*repository.Invitation, error) {
	inviteeEmail = normalizeEmail(inviteeEmail)
	if inviteeEmail == "" {
		return nil, ErrInvalidInput
	}
	if !role.Valid() {
		return nil, ErrInvalidInput
	}

	inviter, err := s.userRepo.FindByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	if inviter == nil || inviter.FarmID == nil {
		return nil, ErrForbidden
	}

	farm, err := s.farmRepo.FindByID(ctx, *inviter.FarmID)
	if err != nil {
		return nil, err
	}
	if farm == nil {
		return nil, ErrNotFound
	}
	if farm.OwnerID != inviterID {
		return nil, ErrForbidden
	}

	if normalizeEmail(inviter.Email) == inviteeEmail {
		return nil, ErrInvalidInput
	}

	exists, err := s.invitationRepo.ExistsPendingForEmail(ctx, farm.ID, inviteeEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	var expiresAt *time.Time
	if s.cfg.InvitationTTLDays > 0 {
		t := time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.InvitationTTLDays))
		expiresAt = &t
	}

	inv := &repository.Invitation{
		FarmID:       farm.ID,
		FarmName:     farm.Name,
		InviterID:    inviterID,
		InvitedEmail: inviteeEmail,
		Role:         role,
		Status:       types.InvitationPending,
		ExpiresAt:    expiresAt,
	}

	// Bind the invitee user id up front when the email already has an account.
	if existing, _ := s.userRepo.FindByEmail(ctx, inviteeEmail); existing != nil {
		inv.InviteeUserID = &existing.ID
	}

	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	go s.dispatchInvitation(inv, inviter, farm)

	return inv, nil
}

// dispatchInvitation delivers the invitation email and, for registered
// invitees, an in-app notification. Failures are logged only.
func (s *invitationService) dispatchInvitation(inv *repository.Invitation, inviter *repository.User, farm *repository.Farm) {
	ctx := context.Background()

	if s.emailSvc != nil {
		err := s.emailSvc.SendInvitation(inv.InvitedEmail, inviter.Name, farm.Name, string(inv.Role), inv.Token)
		if err != nil {
			log.Printf("[Invitation] email to %s failed: %v", inv.InvitedEmail, err)
		}
	}

	if s.notifSvc != nil && inv.InviteeUserID != nil {
		if err := s.notifSvc.SendInvitationReceived(ctx, *inv.InviteeUserID, farm.Name, inviter.Name); err != nil {
			log.Printf("[Invitation] notification failed: %v", err)
		}
	}
}

// ListByFarm returns all invitations issued for the caller's farm. Owner only.
func (s *invitationService) ListByFarm(ctx context.Context, userID string) ([]*repository.Invitation, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.FarmID == nil {
		return nil, ErrForbidden
	}
	if !user.IsFarmOwner {
		return nil, ErrForbidden
	}
	return s.invitationRepo.FindByFarm(ctx, *user.FarmID)
}

// ListPendingForUser returns pending invitations addressed to the caller's
// email or bound to their user id.
func (s *invitationService) ListPendingForUser(ctx context.Context, userID string) ([]*repository.Invitation, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.invitationRepo.FindPendingByEmail(ctx, normalizeEmail(user.Email))
}

// ProcessToken resolves an invitation by its emailed token and accepts it on
// behalf of the authenticated user. Same state machine as Accept.
func (s *invitationService) ProcessToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return ErrInvalidInput
	}

	inv, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	return s.accept(ctx, userID, inv)
}

// Accept accepts an invitation by id.
func (s *invitationService) Accept(ctx context.Context, userID, invitationID string) error {
	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	return s.accept(ctx, userID, inv)
}

// accept runs the acceptance state machine. Guard order matters: existence
// and pending state, then expiry, then identity, then farm existence, then
// the idempotent already-member shortcut, then the owner-exclusivity check,
// and finally the atomic membership transaction.
func (s *invitationService) accept(ctx context.Context, userID string, inv *repository.Invitation) error {
	if inv == nil {
		return ErrNotFound
	}
	if inv.Status != types.InvitationPending {
		return ErrAlreadyResolved
	}

	if inv.IsExpired() {
		if err := s.invitationRepo.MarkStatus(ctx, inv.ID, types.InvitationExpired, nil); err != nil {
			return err
		}
		return ErrExpired
	}

	actor, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if actor == nil {
		return ErrUserNotFound
	}

	if !s.identityMatches(inv, actor) {
		return ErrForbidden
	}

	farm, err := s.farmRepo.FindByID(ctx, inv.FarmID)
	if err != nil {
		return err
	}
	if farm == nil {
		if err := s.invitationRepo.MarkStatus(ctx, inv.ID, types.InvitationFarmNotFound, &userID); err != nil {
			return err
		}
		return ErrFarmNotFound
	}

	// Idempotent accept: already a member, just resolve the invitation.
	if actor.FarmID != nil && *actor.FarmID == inv.FarmID {
		return s.invitationRepo.MarkStatus(ctx, inv.ID, types.InvitationAccepted, &userID)
	}

	// An active owner of a different farm cannot join as staff.
	if actor.IsFarmOwner && actor.FarmID != nil && *actor.FarmID != inv.FarmID {
		return ErrOwnerConflict
	}

	err = s.farmRepo.AcceptInvitation(ctx, inv.ID, inv.FarmID, userID, inv.Role)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) {
			return ErrAlreadyResolved
		}
		return err
	}

	s.broadcaster.StaffAdded(inv.FarmID, userID, string(inv.Role))

	go func() {
		ctx := context.Background()
		if s.notifSvc != nil {
			if err := s.notifSvc.SendStaffJoined(ctx, farm.OwnerID, farm.ID, actor.Name, string(inv.Role)); err != nil {
				log.Printf("[Invitation] owner notification failed: %v", err)
			}
		}
	}()

	return nil
}

// Decline marks a pending invitation declined. Identity guard only, no
// membership mutation.
func (s *invitationService) Decline(ctx context.Context, userID, invitationID string) error {
	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.Status != types.InvitationPending {
		return ErrAlreadyResolved
	}

	actor, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if actor == nil {
		return ErrUserNotFound
	}
	if !s.identityMatches(inv, actor) {
		return ErrForbidden
	}

	return s.invitationRepo.MarkStatus(ctx, inv.ID, types.InvitationDeclined, &userID)
}

// Revoke cancels a pending invitation. Only the inviting owner may revoke.
func (s *invitationService) Revoke(ctx context.Context, userID, invitationID string) error {
	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.Status != types.InvitationPending {
		return ErrAlreadyResolved
	}

	if inv.InviterID != userID {
		return ErrForbidden
	}

	return s.invitationRepo.MarkStatus(ctx, inv.ID, types.InvitationRevoked, &userID)
}

// ExpireOverdue sweeps pending invitations whose expiry has passed.
func (s *invitationService) ExpireOverdue(ctx context.Context) (int, error) {
	return s.invitationRepo.ExpireOverdue(ctx)
}

// identityMatches reports whether the actor is the invitation's target:
// either the bound invitee user id equals the actor, or, when unbound, the
// invited email equals the actor's email case-insensitively.
func (s *invitationService) identityMatches(inv *repository.Invitation, actor *repository.User) bool {
	if inv.InviteeUserID != nil {
		return *inv.InviteeUserID == actor.ID
	}
	return normalizeEmail(inv.InvitedEmail) == normalizeEmail(actor.Email)
}
