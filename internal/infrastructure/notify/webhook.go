package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"docflow/internal/infrastructure/storage/postgres"
)

var _ postgres.OutboxHandler = (*WebhookHandler)(nil)

// DefaultWebhookTimeout bounds a single delivery attempt.
const DefaultWebhookTimeout = 10 * time.Second

// WebhookHandler delivers outbox messages by POSTing their JSON payload.
// Any non-2xx response counts as a failed delivery and is retried by the
// relay.
type WebhookHandler struct {
	url    string
	client *http.Client
}

// NewWebhookHandler creates a handler for url. A nil client gets a
// default one with DefaultWebhookTimeout.
func NewWebhookHandler(url string, client *http.Client) *WebhookHandler {
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &WebhookHandler{url: url, client: client}
}

// Handle implements postgres.OutboxHandler.
func (h *WebhookHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(msg.Payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", msg.EventType)
	req.Header.Set("X-Message-ID", msg.ID.String())
	req.Header.Set("Idempotency-Key", msg.ID.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver %s: %w", msg.EventType, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
