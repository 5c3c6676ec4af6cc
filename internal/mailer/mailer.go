// Package mailer delivers rendered reports over SMTP. Delivery is strictly
// best-effort: callers treat a send failure as a warning, never a tool error.
package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	mail "github.com/wneessen/go-mail"

	"github.com/revenueops/warehouse-mcp/config"
)

// Sender delivers one HTML message. Implemented by Mailer; report tools take
// the interface so tests can swap in a recorder.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, subject, htmlBody string) error
}

// Mailer sends reports through a single SMTP account (STARTTLS, plain auth).
type Mailer struct {
	cfg config.Settings
	log zerolog.Logger
}

// New constructs a Mailer from SMTP settings. The zero-credential case is
// valid; Send then fails and Configured reports false.
func New(cfg config.Settings, logger zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger.With().Str("component", "mailer").Logger()}
}

// Configured reports whether credentials are complete enough to attempt a send.
func (m *Mailer) Configured() bool { return m.cfg.EmailConfigured() }

// Send delivers one HTML message to the configured recipient.
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) error {
	if !m.Configured() {
		return fmt.Errorf("email not configured: set WMCP_EMAIL_SENDER, WMCP_EMAIL_PASSWORD, WMCP_EMAIL_RECIPIENT")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.cfg.Sender, err)
	}
	if err := msg.To(m.cfg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.cfg.Recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(
		m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Sender),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	m.log.Info().Str("to", m.cfg.Recipient).Str("subject", subject).Msg("report email sent")
	return nil
}
