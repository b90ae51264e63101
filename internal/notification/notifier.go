package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"NetSentry/internal/config"
	"NetSentry/internal/model"
)

// EmailNotifier escalates critical alerts over SMTP. The recipient list is
// parsed once at construction.
type EmailNotifier struct {
	cfg        config.SMTPConfig
	auth       smtp.Auth
	recipients []string
}

// NewEmailNotifier creates a notifier for the configured SMTP relay.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	// PlainAuth will not send credentials until the server identifies itself as a trusted one.
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return &EmailNotifier{cfg: cfg, auth: auth, recipients: splitRecipients(cfg.To)}
}

// Send delivers one HTML message to every configured recipient.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := smtp.SendMail(addr, n.auth, n.cfg.From, n.recipients, n.message(subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// message assembles the raw mail payload for one escalation email.
func (n *EmailNotifier) message(subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: " + strings.Join(n.recipients, ", ") + "\r\n")
	b.WriteString("From: " + n.cfg.From + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// splitRecipients parses the comma-separated to field, dropping surrounding
// whitespace and empty entries.
func splitRecipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
