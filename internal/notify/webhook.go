package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"ipguard/pkg/platform/circuit"
)

const sinkWebhook = "webhook"

// Webhook posts Discord-compatible embeds. An approval action with a URL is
// rendered as a link button, one without a URL as a field carrying the token.
type Webhook struct {
	url     string
	client  *http.Client
	breaker *circuit.Breaker
}

type WebhookOption func(*Webhook)

func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// WithBreaker guards the webhook with b. Without one every Send hits the
// endpoint.
func WithBreaker(b *circuit.Breaker) WebhookOption {
	return func(w *Webhook) { w.breaker = b }
}

func NewWebhook(url string, opts ...WebhookOption) (*Webhook, error) {
	if url == "" {
		return nil, errors.New("webhook url is required")
	}
	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

type webhookPayload struct {
	Embeds     []embed     `json:"embeds"`
	Components []component `json:"components,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Fields      []Field      `json:"fields,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	URL        string      `json:"url,omitempty"`
	Components []component `json:"components,omitempty"`
}

const (
	componentActionRow = 1
	componentButton    = 2
	buttonStyleLink    = 5
)

func buildPayload(n Notification) webhookPayload {
	e := embed{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Fields:      slices.Clone(n.Fields),
	}
	if !n.Timestamp.IsZero() {
		e.Timestamp = n.Timestamp.UTC().Format(time.RFC3339)
	}
	if n.Footer != "" {
		e.Footer = &embedFooter{Text: n.Footer}
	}

	// Without a signed link the operator approves through the API, so the
	// token has to be visible in the message.
	if n.Action != nil && n.Action.URL == "" && n.Action.Token != "" {
		name := n.Action.Label
		if name == "" {
			name = "Approval"
		}
		e.Fields = append(e.Fields, Field{
			Name:  name,
			Value: "`POST /approvals/" + string(n.Action.Token) + "`",
		})
	}

	p := webhookPayload{Embeds: []embed{e}}
	if n.Action != nil && n.Action.URL != "" {
		p.Components = []component{{
			Type: componentActionRow,
			Components: []component{{
				Type:  componentButton,
				Style: buttonStyleLink,
				Label: n.Action.Label,
				URL:   n.Action.URL,
			}},
		}}
	}
	return p
}

func (w *Webhook) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(buildPayload(n))
	if err != nil {
		return &Error{Sink: sinkWebhook, Err: fmt.Errorf("encode payload: %w", err)}
	}

	post := func() error { return w.post(ctx, body) }
	if w.breaker != nil {
		err = w.breaker.Do(post)
	} else {
		err = post()
	}
	if err != nil {
		return &Error{Sink: sinkWebhook, Err: err}
	}
	return nil
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
