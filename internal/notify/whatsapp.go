package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppSender delivers a message through the WhatsApp relay Lambda.
type WhatsAppSender interface {
	Send(ctx context.Context, chatID, text string) error
}

type whatsAppSender struct {
	url    string
	client *http.Client
}

// NewWhatsApp builds a sender for the relay Lambda endpoint.
func NewWhatsApp(lambdaURL string, timeout time.Duration) WhatsAppSender {
	return &whatsAppSender{
		url:    lambdaURL,
		client: &http.Client{Timeout: timeout},
	}
}

type whatsAppRequest struct {
	ChatID  string `json:"chatId"`
	Mensaje string `json:"mensaje"`
}

func (s *whatsAppSender) Send(ctx context.Context, chatID, text string) error {
	if s.url == "" {
		return fmt.Errorf("whatsapp relay url not configured")
	}

	body, err := json.Marshal(whatsAppRequest{ChatID: chatID, Mensaje: text})
	if err != nil {
		return fmt.Errorf("marshal whatsapp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call whatsapp relay: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("whatsapp relay status %d", resp.StatusCode)
	}

	return nil
}
