package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/ignite/clinic-events-processor/internal/config"
)

// Client posts plain-text messages to a Slack incoming webhook.
//
// Notification is strictly best-effort: a missing webhook URL and any
// delivery failure are logged and swallowed, never surfaced to the
// processing pipeline.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a new Slack webhook client
func NewClient(cfg config.SlackConfig) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Send posts one message to the webhook.
func (c *Client) Send(ctx context.Context, message string) {
	if c.webhookURL == "" {
		log.Printf("[Slack] webhook URL not configured, dropping message (%d bytes)", len(message))
		return
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		log.Printf("[Slack] failed to marshal message: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[Slack] failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Slack] failed to send message: %v", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Slack] webhook returned status %d", resp.StatusCode)
	}
}
