// Package smtp sends rendered notification emails through the SMTP server
// described by the active email settings row.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// Compile-time check: Mailer implements domain.Mailer.
var _ domain.Mailer = (*Mailer)(nil)

// Mailer implements domain.Mailer over net/smtp. Settings travel with each
// Send call because the active server row can change at runtime.
type Mailer struct{}

// New creates a new SMTP mailer.
func New() *Mailer {
	return &Mailer{}
}

// Send delivers the message through the configured server. STARTTLS is
// negotiated by smtp.SendMail when the server offers it.
func (m *Mailer) Send(ctx context.Context, settings domain.EmailSettings, msg domain.Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)

	var auth smtp.Auth
	if settings.Username != "" {
		auth = smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", settings.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, settings.From, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("sending mail via %s: %w", addr, err)
	}
	return nil
}
