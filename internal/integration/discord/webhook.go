// Package discord posts notifications to a Discord channel webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"vaops/internal/integration"
)

// Embed colours
const (
	ColorInfo    = 0x3498db
	ColorSuccess = 0x2ecc71
	ColorDanger  = 0xe74c3c
)

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type WebhookMessage struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

type Webhook struct {
	url string
	hc  *http.Client
}

// NewWebhook returns nil when url is empty; a nil *Webhook ignores Send.
func NewWebhook(url string, hc *http.Client) *Webhook {
	if url == "" {
		return nil
	}
	return &Webhook{url: url, hc: hc}
}

func (w *Webhook) Send(ctx context.Context, msg WebhookMessage) error {
	if w == nil {
		return nil
	}
	if msg.Username == "" {
		msg.Username = "VA Operations"
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: discord webhook: %v", integration.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &integration.StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	return nil
}
