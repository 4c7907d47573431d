// Package mailer delivers the service's transactional email: the signup
// welcome note and the password-reset code.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/northstack/auth-service/internal/config"
)

type Mailer interface {
	SendWelcome(ctx context.Context, to, username string) error
	SendResetCode(ctx context.Context, to, code string) error
}

// SmtpMailer sends mail through a plain-auth SMTP relay configured via
// the SMTP_* env vars.
type SmtpMailer struct {
	config config.SmtpConfig
}

var _ Mailer = (*SmtpMailer)(nil)

func NewSmtpMailer(cfg config.SmtpConfig) *SmtpMailer {
	return &SmtpMailer{config: cfg}
}

func (m *SmtpMailer) SendWelcome(ctx context.Context, to, username string) error {
	subject := "Welcome"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account has been created.\r\n", username)
	return m.send(to, subject, body)
}

func (m *SmtpMailer) SendResetCode(ctx context.Context, to, code string) error {
	subject := "Your password reset code"
	body := fmt.Sprintf("Your password reset code is %s. It expires in 5 minutes.\r\n", code)
	return m.send(to, subject, body)
}

func (m *SmtpMailer) send(to, subject, body string) error {
	addr := m.config.GetSmtpHost() + ":" + m.config.GetSmtpPort()
	auth := smtp.PlainAuth("", m.config.GetSmtpAccount(), m.config.GetSmtpPassword(), m.config.GetSmtpHost())

	msg := []byte("From: " + m.config.GetSmtpSender() + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body)

	if err := smtp.SendMail(addr, auth, m.config.GetSmtpSender(), []string{to}, msg); err != nil {
		return errors.Wrap(err, "SmtpMailer.send")
	}
	return nil
}

// LogMailer writes mail to the log instead of sending it. Used in DEV and
// in tests.
type LogMailer struct{}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendWelcome(ctx context.Context, to, username string) error {
	log.Info().Str("to", to).Str("username", username).Msg("welcome email")
	return nil
}

func (m *LogMailer) SendResetCode(ctx context.Context, to, code string) error {
	log.Info().Str("to", to).Str("code", code).Msg("reset code email")
	return nil
}
