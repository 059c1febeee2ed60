package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jsekonopo/agriassist-sub001/internal/email"
	"github.com/jsekonopo/agriassist-sub001/internal/notification"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	services         *service.Services
	notifSvc         *notification.Service
	emailSvc         *email.Service
	taskRepo         repository.TaskRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(
	services *service.Services,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		services:         services,
		notifSvc:         notifSvc,
		emailSvc:         emailSvc,
		taskRepo:         taskRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every hour - expire overdue invitations
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running invitation expiry sweep...")
		s.expireInvitations()
	})

	// Run every day at 8 AM - task due reminders
	s.cron.AddFunc("0 8 * * *", func() {
		log.Println("[Cron] Running task due reminder check...")
		s.sendTaskReminders()
	})

	// Clean up old notifications - run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// expireInvitations flips pending invitations past their expiry to expired.
func (s *Scheduler) expireInvitations() {
	ctx := context.Background()

	n, err := s.services.Invitation.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("[Cron] Invitation expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Cron] Expired %d overdue invitations", n)
	}
}

// sendTaskReminders notifies assignees about tasks due within 24 hours.
// Each task is reminded at most once.
func (s *Scheduler) sendTaskReminders() {
	ctx := context.Background()

	tasks, err := s.taskRepo.FindDueSoon(ctx, 24*time.Hour)
	if err != nil {
		log.Printf("[Cron] Task reminder query failed: %v", err)
		return
	}

	for _, task := range tasks {
		if task.AssigneeID == nil || task.DueDate == nil {
			continue
		}

		due := task.DueDate.Format("Jan 2, 3:04 PM")
		if err := s.notifSvc.SendTaskDueSoon(ctx, *task.AssigneeID, task.FarmID, task.Title, due); err != nil {
			log.Printf("[Cron] Task reminder notification failed: %v", err)
			continue
		}

		s.emailTaskReminder(ctx, task, due)

		if err := s.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
			log.Printf("[Cron] Marking reminder sent failed: %v", err)
		}
	}

	if len(tasks) > 0 {
		log.Printf("[Cron] Sent %d task reminders", len(tasks))
	}
}

func (s *Scheduler) emailTaskReminder(ctx context.Context, task *repository.Task, due string) {
	if s.emailSvc == nil {
		return
	}

	user, err := s.userRepo.FindByID(ctx, *task.AssigneeID)
	if err != nil || user == nil {
		return
	}
	if !user.Prefs.TaskEmail {
		return
	}

	notes := ""
	if task.Notes != nil {
		notes = *task.Notes
	}

	err = s.emailSvc.SendTaskReminder(user.Email, email.TaskReminderData{
		Name:        user.Name,
		TaskTitle:   task.Title,
		DueDate:     due,
		Description: notes,
	})
	if err != nil {
		log.Printf("[Cron] Task reminder email failed: %v", err)
	}
}

const notificationRetention = 90 * 24 * time.Hour

// cleanupOldNotifications removes notifications older than the retention window.
func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	n, err := s.notificationRepo.DeleteOlderThan(ctx, notificationRetention)
	if err != nil {
		log.Printf("[Cron] Notification cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Cron] Deleted %d old notifications", n)
	}
}
