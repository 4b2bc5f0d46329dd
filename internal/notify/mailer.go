// Package notify delivers booking and login notifications by e-mail.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/example/room-booking/internal/application"
)

// SMTPConfig describes the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Sender hands finished messages to a relay. *mail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer renders notifications and sends them over SMTP.
type Mailer struct {
	sender   Sender
	from     string
	renderer *Renderer
	logger   *slog.Logger
}

var _ application.Notifier = (*Mailer)(nil)

// NewMailer builds a Mailer for cfg. An empty host yields a mailer that logs
// and drops every message.
func NewMailer(cfg SMTPConfig, loc *time.Location, logger *slog.Logger) (*Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	renderer, err := NewRenderer(loc)
	if err != nil {
		return nil, err
	}

	m := &Mailer{from: cfg.From, renderer: renderer, logger: logger.With("component", "mailer")}
	if cfg.Host == "" {
		m.logger.Warn("smtp host is empty, e-mail notifications disabled")
		return m, nil
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}

	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		dialer.Timeout = cfg.Timeout
	}
	m.sender = dialer
	return m, nil
}

// NewMailerWithSender builds a Mailer around an existing sender.
func NewMailerWithSender(sender Sender, from string, loc *time.Location, logger *slog.Logger) (*Mailer, error) {
	renderer, err := NewRenderer(loc)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{sender: sender, from: from, renderer: renderer, logger: logger.With("component", "mailer")}, nil
}

// Notify renders n and sends it to n.Recipient.
func (m *Mailer) Notify(ctx context.Context, n application.Notification) error {
	if n.Recipient == "" {
		return fmt.Errorf("notification %s has no recipient", n.Kind)
	}

	subject, body, err := m.renderer.Render(n)
	if err != nil {
		return err
	}

	if m.sender == nil {
		m.logger.DebugContext(ctx, "notification skipped (mail disabled)",
			"kind", n.Kind,
			"recipient", n.Recipient,
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.Recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %s mail: %w", n.Kind, err)
	}

	m.logger.InfoContext(ctx, "notification sent",
		"kind", n.Kind,
		"recipient", n.Recipient,
		"booking_id", n.BookingID,
	)
	return nil
}
