package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Slack posts to an incoming webhook.
type Slack struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlack returns a Slack sink for webhookURL. A nil logger uses
// slog.Default.
func NewSlack(webhookURL string, timeout time.Duration, logger *slog.Logger) *Slack {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name implements Sink.
func (s *Slack) Name() string { return "slack" }

// Send implements Sink.
func (s *Slack) Send(ctx context.Context, msg Message) error {
	return s.PostText(ctx, msg.Render(SlackDialect))
}

// PostText posts {"text": text}. There is no retry. Only transport errors
// are returned; the response is drained and any status is accepted, with
// non-2xx statuses logged as warnings.
func (s *Slack) PostText(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("webhook rejected post", "status", resp.StatusCode)
		return nil
	}
	s.logger.Debug("webhook post accepted", "status", resp.StatusCode)
	return nil
}
