// Package notification handles creating notifications and fanning them out
// over WebSocket and email.
package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/jsekonopo/agriassist-sub001/internal/email"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/socket"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

// Service handles sending notifications
type Service struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	broadcaster      *socket.Broadcaster
	email            *email.Service
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// SetBroadcaster sets the WebSocket broadcaster (for dependency injection)
func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// SetEmailService sets the email service (for dependency injection)
func (s *Service) SetEmailService(e *email.Service) {
	s.email = e
}

// Notify persists a notification for a user, pushes it over WebSocket, and
// sends an email when the recipient's preferences allow it for the type.
// The notification record is the source of truth; email failures are logged
// and never surfaced to the caller.
func (s *Service) Notify(ctx context.Context, n *repository.Notification) error {
	if n.UserID == "" {
		return nil
	}
	if n.Type == "" {
		n.Type = types.NotificationGeneral
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return err
	}

	s.push(n)

	if s.email != nil && s.userRepo != nil {
		go s.maybeEmail(n)
	}

	return nil
}

// NotifyAll creates the same notification for each recipient.
func (s *Service) NotifyAll(ctx context.Context, userIDs []string, farmID *string, notifType, title, message string, link *string) error {
	for _, uid := range userIDs {
		n := &repository.Notification{
			UserID:  uid,
			FarmID:  farmID,
			Type:    notifType,
			Title:   title,
			Message: message,
			Link:    link,
		}
		if err := s.Notify(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// push sends the notification and an updated unread count over WebSocket.
func (s *Service) push(n *repository.Notification) {
	if s.broadcaster == nil {
		return
	}

	s.broadcaster.NotifyUser(n.UserID, map[string]interface{}{
		"id":        n.ID,
		"type":      n.Type,
		"title":     n.Title,
		"message":   n.Message,
		"link":      n.Link,
		"read":      n.Read,
		"createdAt": n.CreatedAt,
	})

	if total, unread, err := s.notificationRepo.Count(context.Background(), n.UserID); err == nil {
		s.broadcaster.NotifyCount(n.UserID, total, unread)
	}
}

// maybeEmail sends the notification by email if the user opted in for the type.
func (s *Service) maybeEmail(n *repository.Notification) {
	user, err := s.userRepo.FindByID(context.Background(), n.UserID)
	if err != nil || user == nil {
		return
	}
	if !user.Prefs.EmailEnabledFor(n.Type) {
		return
	}

	link := ""
	if n.Link != nil {
		link = *n.Link
	}

	err = s.email.SendNotification(user.Email, email.NotificationData{
		Title:   n.Title,
		Message: n.Message,
		Link:    link,
	})
	if err != nil {
		log.Printf("[Notification] email to %s failed: %v", user.Email, err)
	}
}

// ============================================
// Convenience senders
// ============================================

// SendInvitationReceived notifies an existing user that they were invited.
func (s *Service) SendInvitationReceived(ctx context.Context, userID, farmName, inviterName string) error {
	return s.Notify(ctx, &repository.Notification{
		UserID:  userID,
		Type:    types.NotificationInvitation,
		Title:   "Farm Invitation",
		Message: fmt.Sprintf("%s invited you to join %s", inviterName, farmName),
	})
}

// SendStaffJoined notifies the farm owner that an invitee accepted.
func (s *Service) SendStaffJoined(ctx context.Context, ownerID, farmID, memberName, role string) error {
	return s.Notify(ctx, &repository.Notification{
		UserID:  ownerID,
		FarmID:  &farmID,
		Type:    types.NotificationStaffChange,
		Title:   "Staff Joined",
		Message: fmt.Sprintf("%s joined your farm as %s", memberName, role),
	})
}

// SendRoleChanged notifies a staff member their role changed.
func (s *Service) SendRoleChanged(ctx context.Context, userID, farmID, farmName, newRole string) error {
	return s.Notify(ctx, &repository.Notification{
		UserID:  userID,
		FarmID:  &farmID,
		Type:    types.NotificationStaffChange,
		Title:   "Role Updated",
		Message: fmt.Sprintf("Your role on %s is now %s", farmName, newRole),
	})
}

// SendStaffRemoved notifies a user they were removed from a farm.
func (s *Service) SendStaffRemoved(ctx context.Context, userID, farmName string) error {
	return s.Notify(ctx, &repository.Notification{
		UserID:  userID,
		Type:    types.NotificationStaffChange,
		Title:   "Farm Membership Ended",
		Message: fmt.Sprintf("You are no longer a member of %s", farmName),
	})
}

// SendTaskDueSoon notifies a user about an upcoming task deadline.
func (s *Service) SendTaskDueSoon(ctx context.Context, userID, farmID, taskTitle, due string) error {
	return s.Notify(ctx, &repository.Notification{
		UserID:  userID,
		FarmID:  &farmID,
		Type:    types.NotificationTaskReminder,
		Title:   "Task Due Soon",
		Message: fmt.Sprintf("Task %q is due %s", taskTitle, due),
	})
}

// SendAIReportReady notifies a user that an advisory report completed.
func (s *Service) SendAIReportReady(ctx context.Context, userID, farmID, subject string) error {
	return s.Notify(ctx, &repository.Notification{
		UserID:  userID,
		FarmID:  &farmID,
		Type:    types.NotificationAIReport,
		Title:   "Advisory Report Ready",
		Message: fmt.Sprintf("Your %s report is ready to view", subject),
	})
}
