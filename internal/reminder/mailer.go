package reminder

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/neighborhood-library/api-service/internal/config"
)

// Mailer delivers reminder emails. The SMTP implementation is used in
// production; tests and unconfigured deployments get the log fallback.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.Reminder) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   formatFrom(cfg.FromName, cfg.FromEmail),
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

func formatFrom(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// LogMailer writes reminders to the application log instead of sending
// them. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	log.Printf("Reminder mail (not sent, SMTP not configured): to=%s subject=%q", to, subject)
	return nil
}

// NewMailer picks the SMTP mailer when a host is configured and falls back
// to logging otherwise.
func NewMailer(cfg config.Reminder) Mailer {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
