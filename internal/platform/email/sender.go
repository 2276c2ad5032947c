package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/platform/config"
)

// Sender delivers a single templated message. Implementations must not be
// relied on for durability: callers fire-and-log, and a send failure never
// fails the operation that triggered it.
type Sender interface {
	Send(to []string, subject, htmlBody, textBody string) (string, error)
}

type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(to []string, subject, htmlBody, textBody string) (string, error) {
	id := uuid.New().String()
	boundary := "clienthub-" + id

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	if s.cfg.ReplyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", s.cfg.ReplyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, to, []byte(msg.String())); err != nil {
		return "", err
	}
	return id, nil
}

// LogSender is used when email is disabled in config. It records the send
// without delivering anything.
type LogSender struct{}

func (LogSender) Send(to []string, subject, htmlBody, textBody string) (string, error) {
	id := uuid.New().String()
	log.Info().Strs("to", to).Str("subject", subject).Str("email_id", id).Msg("email delivery disabled, dropping message")
	return id, nil
}

// NewSender picks the configured implementation.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.Enabled {
		return LogSender{}
	}
	return NewSMTPSender(cfg.SMTP)
}
