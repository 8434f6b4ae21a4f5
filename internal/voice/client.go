package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const outboundCallPath = "/v1/convai/twilio/outbound-call"

// CallResult is the provider's raw response to an outbound-call request.
type CallResult struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the provider accepted the call.
func (r CallResult) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Client talks to the ElevenLabs conversational-AI API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// TriggerOutboundCall asks the provider to place a call. A non-2xx
// provider status is reported in the result, not as an error: the caller
// relays the provider's verdict to its own client.
func (c *Client) TriggerOutboundCall(ctx context.Context, payload OutboundCallPayload) (CallResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return CallResult{}, fmt.Errorf("marshal outbound call payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+outboundCallPath, bytes.NewReader(body))
	if err != nil {
		return CallResult{}, fmt.Errorf("build outbound call request: %w", err)
	}

	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return CallResult{}, fmt.Errorf("call outbound endpoint: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return CallResult{}, fmt.Errorf("read outbound call response: %w", err)
	}

	result := CallResult{Status: resp.StatusCode}

	if json.Valid(raw) {
		result.Body = raw
	} else if len(raw) > 0 {
		// Non-JSON provider errors still get relayed verbatim.
		quoted, _ := json.Marshal(string(raw))
		result.Body = quoted
	}

	return result, nil
}
