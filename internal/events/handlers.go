package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrWebhookStatus is returned when the webhook answers with a non-2xx status.
var ErrWebhookStatus = errors.New("webhook returned unexpected status")

// DefaultWebhookTimeout bounds a delivery when no timeout is configured.
const DefaultWebhookTimeout = 5 * time.Second

// WebhookHandler posts events as JSON to an external endpoint.
type WebhookHandler struct {
	url    string
	client *http.Client
	types  map[string]bool
	logger *slog.Logger
}

// NewWebhookHandler creates a handler posting to url. When types is
// non-empty only those event types are delivered.
func NewWebhookHandler(url string, timeout time.Duration, logger *slog.Logger, types ...string) *WebhookHandler {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}

	filter := make(map[string]bool, len(types))
	for _, t := range types {
		filter[t] = true
	}

	return &WebhookHandler{
		url:    url,
		client: &http.Client{Timeout: timeout},
		types:  filter,
		logger: logger.With(slog.String("component", "webhook_handler")),
	}
}

// HandleEvent posts event and fails on transport errors or non-2xx answers.
func (h *WebhookHandler) HandleEvent(ctx context.Context, event *Event) error {
	if len(h.types) > 0 && !h.types[event.Type] {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", event.Type)
	req.Header.Set("X-Event-ID", event.ID.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrWebhookStatus, resp.StatusCode)
	}

	h.logger.Debug("event delivered",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int("status", resp.StatusCode))

	return nil
}

// LogHandler writes events to the log. It stands in for the rewards
// system when no webhook is configured.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger.With(slog.String("component", "event_log"))}
}

// HandleEvent logs the event and its payload.
func (h *LogHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.logger.InfoContext(ctx, "event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("payload", string(event.Payload)))
	return nil
}
