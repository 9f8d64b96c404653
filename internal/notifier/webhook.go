package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// WebhookNotifier POSTs live updates as JSON to the subscription target URL.
// Compatible with Slack/Discord-style incoming webhooks that accept a
// {"text": ...} payload.
type WebhookNotifier struct {
	httpClient *http.Client
}

var _ contracts.NotificationSink = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send implements NotificationSink.
func (n *WebhookNotifier) Send(ctx context.Context, sub models.Subscription, message string) error {
	payload := map[string]interface{}{
		"text":   message,
		"bet_id": sub.BetID,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Target, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook to %s: %w", sub.Target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned status %d", sub.Target, resp.StatusCode)
	}
	return nil
}
