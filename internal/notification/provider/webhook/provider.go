package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/railzwaylabs/aligntrack/internal/notification/domain"
)

// Provider posts each event as JSON to a single configured URL.
type Provider struct {
	url    string
	client *http.Client
}

func NewProvider(url string) *Provider {
	return &Provider{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (p *Provider) Name() string { return "webhook" }

type message struct {
	EventID     string         `json:"event_id"`
	CaseID      string         `json:"case_id"`
	RecipientID *string        `json:"recipient_id,omitempty"`
	Template    string         `json:"template"`
	Data        map[string]any `json:"data"`
}

func (p *Provider) Send(ctx context.Context, input domain.NotificationInput) error {
	if p.url == "" {
		return fmt.Errorf("missing_webhook_url")
	}

	msg := message{
		EventID:  input.EventID.String(),
		CaseID:   input.CaseID.String(),
		Template: input.TemplateID,
		Data:     input.Data,
	}
	if input.RecipientID != nil {
		recipient := input.RecipientID.String()
		msg.RecipientID = &recipient
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook_error: status=%d", resp.StatusCode)
	}
	return nil
}
