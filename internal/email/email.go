// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"time"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
	// BaseURL is the frontend origin used to build links in emails.
	BaseURL string
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
	queue     *EmailQueue
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	// Farm invitation
	s.templates["invitation"] = template.Must(template.New("invitation").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #16a34a; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>You're Invited to AgriAssist</h2>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p><strong>{{.InviterName}}</strong> invited you to join <strong>{{.FarmName}}</strong> as a <strong>{{.Role}}</strong>.</p>

        <a href="{{.InviteURL}}" class="btn">Accept Invitation</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            This invitation may expire. If you were not expecting this email, you can ignore it.
        </p>
    </div>
    <div class="footer">
        AgriAssist &bull; Farm Management Platform
    </div>
</div>
</body>
</html>
`))

	// Staff role changed
	s.templates["role_changed"] = template.Must(template.New("role_changed").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Your Role Was Updated</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>Your role on <strong>{{.FarmName}}</strong> is now <strong>{{.NewRole}}</strong>.</p>
    </div>
    <div class="footer">
        AgriAssist &bull; Farm Management Platform
    </div>
</div>
</body>
</html>
`))

	// Staff removed
	s.templates["staff_removed"] = template.Must(template.New("staff_removed").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #6b7280; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Farm Membership Ended</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>You are no longer a member of <strong>{{.FarmName}}</strong>. A personal farm has been set up for you so your account keeps working.</p>
    </div>
    <div class="footer">
        AgriAssist &bull; Farm Management Platform
    </div>
</div>
</body>
</html>
`))

	// Task reminder
	s.templates["task_reminder"] = template.Must(template.New("task_reminder").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #f59e0b; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .task-card { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Task Due Soon</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <div class="task-card">
            <h3>{{.TaskTitle}}</h3>
            <p>Due: <strong>{{.DueDate}}</strong></p>
            {{if .Description}}<p>{{.Description}}</p>{{end}}
        </div>
    </div>
    <div class="footer">
        AgriAssist &bull; Farm Management Platform
    </div>
</div>
</body>
</html>
`))

	// Generic notification
	s.templates["notification"] = template.Must(template.New("notification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>{{.Title}}</h2>
    </div>
    <div class="content">
        <p>{{.Message}}</p>
        {{if .Link}}<p><a href="{{.Link}}">View in AgriAssist</a></p>{{end}}
    </div>
    <div class="footer">
        AgriAssist &bull; Farm Management Platform
    </div>
</div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	// Headers
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	// Build recipient list
	recipients := append(email.To, email.CC...)
	recipients = append(recipients, email.BCC...)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		_, err = w.Write(msg.Bytes())
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	// Non-TLS
	return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// InvitationData holds data for invitation emails
type InvitationData struct {
	InviterName string
	FarmName    string
	Role        string
	InviteURL   string
}

// SendInvitation sends a farm invitation email
func (s *Service) SendInvitation(to, inviterName, farmName, role, token string) error {
	if inviterName == "" {
		inviterName = "Someone"
	}

	inviteURL := fmt.Sprintf("%s/accept-invitation?token=%s", strings.TrimRight(s.config.BaseURL, "/"), token)

	data := InvitationData{
		InviterName: inviterName,
		FarmName:    farmName,
		Role:        role,
		InviteURL:   inviteURL,
	}

	return s.dispatch(
		[]string{to},
		fmt.Sprintf("[AgriAssist] Invitation to join %s", farmName),
		"invitation",
		data,
	)
}

// RoleChangedData holds data for role change emails
type RoleChangedData struct {
	Name     string
	FarmName string
	NewRole  string
}

// SendRoleChanged sends a role change email
func (s *Service) SendRoleChanged(to string, data RoleChangedData) error {
	return s.dispatch(
		[]string{to},
		fmt.Sprintf("[AgriAssist] Your role on %s changed", data.FarmName),
		"role_changed",
		data,
	)
}

// StaffRemovedData holds data for staff removal emails
type StaffRemovedData struct {
	Name     string
	FarmName string
}

// SendStaffRemoved sends a staff removal email
func (s *Service) SendStaffRemoved(to string, data StaffRemovedData) error {
	return s.dispatch(
		[]string{to},
		fmt.Sprintf("[AgriAssist] Membership on %s ended", data.FarmName),
		"staff_removed",
		data,
	)
}

// TaskReminderData holds data for task reminder emails
type TaskReminderData struct {
	Name        string
	TaskTitle   string
	DueDate     string
	Description string
}

// SendTaskReminder sends a task due reminder email
func (s *Service) SendTaskReminder(to string, data TaskReminderData) error {
	return s.dispatch(
		[]string{to},
		fmt.Sprintf("[AgriAssist] Task due soon: %s", data.TaskTitle),
		"task_reminder",
		data,
	)
}

// NotificationData holds data for generic notification emails
type NotificationData struct {
	Title   string
	Message string
	Link    string
}

// SendNotification sends a generic notification email
func (s *Service) SendNotification(to string, data NotificationData) error {
	return s.dispatch(
		[]string{to},
		fmt.Sprintf("[AgriAssist] %s", data.Title),
		"notification",
		data,
	)
}

// ============================================
// Email Queue (async sending)
// ============================================

const maxSendRetries = 3

// templateSender is the slice of Service the queue workers need.
type templateSender interface {
	SendWithTemplate(to []string, subject, templateName string, data interface{}) error
}

// EmailQueue delivers template emails from background workers, retrying
// failed sends with a growing delay.
type EmailQueue struct {
	sender     templateSender
	queue      chan *queuedEmail
	done       chan bool
	retryDelay time.Duration
}

type queuedEmail struct {
	to           []string
	subject      string
	templateName string
	data         interface{}
	retries      int
}

// NewEmailQueue creates a queue and starts its workers.
func NewEmailQueue(sender templateSender, workers int) *EmailQueue {
	q := &EmailQueue{
		sender:     sender,
		queue:      make(chan *queuedEmail, 1000),
		done:       make(chan bool),
		retryDelay: time.Second,
	}

	for i := 0; i < workers; i++ {
		go q.worker()
	}

	return q
}

func (q *EmailQueue) worker() {
	for {
		select {
		case email := <-q.queue:
			err := q.sender.SendWithTemplate(email.to, email.subject, email.templateName, email.data)
			if err != nil {
				log.Printf("[Email] send to %v failed: %v", email.to, err)
				if email.retries < maxSendRetries {
					email.retries++
					time.Sleep(q.retryDelay * time.Duration(email.retries*2))
					q.queue <- email
				}
			}
		case <-q.done:
			return
		}
	}
}

// Enqueue adds an email to the queue
func (q *EmailQueue) Enqueue(to []string, subject, templateName string, data interface{}) {
	q.queue <- &queuedEmail{
		to:           to,
		subject:      subject,
		templateName: templateName,
		data:         data,
		retries:      0,
	}
}

// Stop stops the email queue workers
func (q *EmailQueue) Stop() {
	close(q.done)
}

// StartQueue routes subsequent template sends through background workers.
// Without it every send happens inline on the calling goroutine.
func (s *Service) StartQueue(workers int) {
	if s.queue == nil {
		s.queue = NewEmailQueue(s, workers)
	}
}

// StopQueue stops the queue workers if a queue was started.
func (s *Service) StopQueue() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// dispatch hands the email to the queue when one is running, otherwise
// sends inline.
func (s *Service) dispatch(to []string, subject, templateName string, data interface{}) error {
	if s.queue != nil {
		s.queue.Enqueue(to, subject, templateName, data)
		return nil
	}
	return s.SendWithTemplate(to, subject, templateName, data)
}
