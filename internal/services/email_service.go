package services

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Jdholguin19/tareas/internal/models"
)

type EmailService interface {
	SendOverdueDigest(email, username string, tasks []models.Task) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendOverdueDigest(email, username string, tasks []models.Task) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("You have %d overdue tasks", len(tasks)))

	var items strings.Builder
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = " (due " + t.DueDate.Format("2006-01-02") + ")"
		}
		items.WriteString("<li>" + html.EscapeString(t.Title) + due + "</li>")
	}

	body := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>The following tasks are past their due date:</p>
		<ul>%s</ul>
		<p>Open the app to catch up.</p>
	`, html.EscapeString(username), items.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send overdue digest: %w", err)
	}
	return nil
}
