package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/config"
)

// ChatPoster posts announcements to the team chat webhook. Like email, a
// failed post is logged and swallowed.
type ChatPoster interface {
	Post(ctx context.Context, text string) bool
}

type webhookPoster struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewChatPoster builds a webhook-backed poster, or a no-op when no webhook
// URL is configured.
func NewChatPoster(cfg config.NotificationConfig, logger *zap.Logger) ChatPoster {
	if cfg.ChatWebhookURL == "" {
		return &noopChatPoster{logger: logger}
	}
	return &webhookPoster{
		url:     cfg.ChatWebhookURL,
		client:  &http.Client{Timeout: cfg.SendTimeout()},
		timeout: cfg.SendTimeout(),
		logger:  logger,
	}
}

func (p *webhookPoster) Post(ctx context.Context, text string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		p.logger.Warn("chat payload encode failed", zap.Error(err))
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		p.logger.Warn("chat request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("chat post failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		p.logger.Warn("chat webhook rejected message", zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

type noopChatPoster struct {
	logger *zap.Logger
}

func (p *noopChatPoster) Post(_ context.Context, text string) bool {
	p.logger.Debug("chat delivery disabled, dropping message", zap.Int("length", len(text)))
	return false
}
