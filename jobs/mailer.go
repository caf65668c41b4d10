package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"
)

// Mailer delivers queued emails over SMTP.
type Mailer struct {
	Host   string
	Port   int
	From   string
	Logger *slog.Logger
}

// NewMailer constructs the mail handler.
func NewMailer(host string, port int, from string, logger *slog.Logger) *Mailer {
	return &Mailer{Host: host, Port: port, From: from, Logger: logger}
}

// Handle processes TaskTypeSendEmail tasks.
func (m *Mailer) Handle(_ context.Context, t *asynq.Task) error {
	if m == nil || m.Host == "" {
		return errors.New("mailer: not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.From, payload.To, payload.Subject, payload.Body)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	if err := smtp.SendMail(addr, nil, m.From, []string{payload.To}, []byte(msg)); err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	}
	return nil
}
