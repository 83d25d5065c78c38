package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/config"
)

// EmailSender delivers a single email. Send reports whether the message was
// accepted; delivery failures are logged, never propagated, so one bad
// address cannot break a fan-out.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

type resendSender struct {
	client  *resend.Client
	from    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewEmailSender builds a Resend-backed sender. With no API key configured it
// degrades to a no-op that logs the skipped send at debug level.
func NewEmailSender(cfg config.NotificationConfig, logger *zap.Logger) EmailSender {
	if cfg.ResendAPIKey == "" {
		return &noopEmailSender{logger: logger}
	}
	return &resendSender{
		client:  resend.NewClient(cfg.ResendAPIKey),
		from:    fmt.Sprintf("Workdesk <%s>", cfg.EmailFrom),
		timeout: cfg.SendTimeout(),
		logger:  logger,
	}
}

func (s *resendSender) Send(ctx context.Context, to, subject, body string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		s.logger.Warn("email send failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return false
	}
	return true
}

type noopEmailSender struct {
	logger *zap.Logger
}

func (s *noopEmailSender) Send(_ context.Context, to, subject, _ string) bool {
	s.logger.Debug("email delivery disabled, dropping message",
		zap.String("to", to),
		zap.String("subject", subject))
	return false
}
