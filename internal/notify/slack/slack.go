// Package slack announces bulk escalation actions to Slack via incoming
// webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/ward/internal/escalation"
)

const httpTimeout = 10 * time.Second

// Notifier posts bulk action summaries to a Slack webhook. It
// implements escalation.Notifier.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, NotifyBulk
// is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// NotifyBulk posts a bulk action summary to the configured webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) NotifyBulk(ctx context.Context, action *escalation.BulkAction) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(action))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(a *escalation.BulkAction) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(a),
			{"type": "divider"},
			fieldsBlock(a),
			{"type": "divider"},
			contextBlock(a),
		},
	}
}

func headerBlock(a *escalation.BulkAction) map[string]any {
	text := fmt.Sprintf("%s Bulk %s: %d escalations", statusEmoji(a.Status), a.Status, a.Applied)
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(a *escalation.BulkAction) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", a.Status),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Applied:* %d", a.Applied),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Not found:* %d", a.NotFound),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Actor:* %s", actorOrUnknown(a.Actor)),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock(a *escalation.BulkAction) map[string]any {
	ts := a.At
	if ts.IsZero() {
		ts = time.Now()
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("ward • escalation inbox • %s", ts.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func statusEmoji(s escalation.Status) string {
	switch s {
	case escalation.StatusApproved:
		return "✅" // check mark
	case escalation.StatusOverridden:
		return "\U0001f6d1" // stop sign
	default:
		return "\U0001f4cb" // clipboard
	}
}

func actorOrUnknown(actor string) string {
	if actor == "" {
		return "unknown"
	}
	return actor
}
