package mailer

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/jhcsc/attend-api/internal/model"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	From     string
}

// SMTPMailer sends through an SMTP relay using gomail. The bearer token
// passed to Send is used as the authentication secret for the dial, so a
// revoked credential fails the dial rather than the message build.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

var _ Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, msg Message, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("send: %w", model.ErrAuthExpired)
	}

	message := gomail.NewMessage()
	from := msg.From
	if from == "" {
		from = m.cfg.From
	}
	message.SetHeader("From", from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, token)

	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(message)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return classify(err)
		}
		return nil
	}
}

// classify maps SMTP failures onto the core's error taxonomy. 535 and its
// kin mean the credential was rejected; everything else is retryable.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "535"),
		strings.Contains(msg, "auth"),
		strings.Contains(msg, "access denied"),
		strings.Contains(msg, "invalid_grant"):
		return fmt.Errorf("%v: %w", err, model.ErrAuthExpired)
	}
	return &TransientError{Err: err}
}
