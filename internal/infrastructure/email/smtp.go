package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"

	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/template"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/services/markdown"
)

const passwordResetTemplate = "password_reset"

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	BaseURL     string // Base URL for links in mails (e.g., "http://localhost:8080")
}

// SMTPMailer renders the mail templates and delivers them over SMTP. It
// serves both ticket notifications and password reset mails.
type SMTPMailer struct {
	config    SMTPConfig
	templates *template.MailTemplates
	renderer  markdown.Renderer
	send      func(m *gomail.Message) error
	logger    logger.Interface
}

func NewSMTPMailer(config SMTPConfig, templates *template.MailTemplates, renderer markdown.Renderer, logger logger.Interface) *SMTPMailer {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPMailer{
		config:    config,
		templates: templates,
		renderer:  renderer,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
		logger: logger,
	}
}

// NewMailerWithSender delivers through s instead of dialing a server.
func NewMailerWithSender(config SMTPConfig, templates *template.MailTemplates, renderer markdown.Renderer, s gomail.Sender, logger logger.Interface) *SMTPMailer {
	m := NewSMTPMailer(config, templates, renderer, logger)
	m.send = func(msg *gomail.Message) error {
		return gomail.Send(s, msg)
	}
	return m
}

func (s *SMTPMailer) SendTicketMail(ctx context.Context, m ticketuc.TicketMail) error {
	if m.Ticket == nil || m.Queue == nil {
		return fmt.Errorf("ticket mail %s needs a ticket and a queue", m.Template)
	}
	t, q := m.Ticket, m.Queue
	tag := t.TicketForURL(q.Slug())

	data := template.MailData{
		TicketID:       t.ID(),
		TicketTag:      tag,
		Title:          t.Title(),
		Description:    t.Description(),
		Status:         t.Status().String(),
		PriorityLabel:  t.Priority().Label(),
		SubmitterEmail: t.SubmitterEmail(),
		Resolution:     t.Resolution(),
		QueueTitle:     q.Title(),
		ViewURL:        s.publicURL(tag, t.SubmitterEmail(), t.SecretKey()),
		StaffURL:       s.link(fmt.Sprintf("/tickets/%d", t.ID())),
	}
	if m.FollowUp != nil {
		data.FollowUpTitle = m.FollowUp.Title()
		data.Comment = m.FollowUp.Comment()
	}

	subject, body, err := s.templates.Render(m.Template, data)
	if err != nil {
		return err
	}

	from := m.From
	if from == "" {
		from = s.config.FromAddress
	}
	return s.sendEmail(ctx, from, m.To, subject, body)
}

func (s *SMTPMailer) SendPasswordReset(ctx context.Context, to, username, link string) error {
	subject, body, err := s.templates.Render(passwordResetTemplate, template.MailData{
		Username: username,
		Link:     link,
	})
	if err != nil {
		return err
	}
	return s.sendEmail(ctx, s.config.FromAddress, to, subject, body)
}

func (s *SMTPMailer) publicURL(tag, email, key string) string {
	if s.config.BaseURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("ticket", tag)
	q.Set("email", email)
	q.Set("key", key)
	return s.link("/view?" + q.Encode())
}

func (s *SMTPMailer) link(path string) string {
	if s.config.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.config.BaseURL, "/") + path
}

func (s *SMTPMailer) sendEmail(ctx context.Context, from, to, subject, plainBody string) error {
	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetHeader("From", m.FormatAddress(from, s.config.FromName))
	} else {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	if s.renderer != nil {
		m.AddAlternative("text/html", s.renderer.Render(plainBody))
	}

	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		s.logger.Debugw("email sent", "to", to, "subject", subject)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}
