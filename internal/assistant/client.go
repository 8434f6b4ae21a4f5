// Package assistant wraps the OpenAI chat API for the dashboard chat
// endpoint and the Telegram relay bot.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/wakai-center/wakai-backend/internal/platform/config"
	"github.com/wakai-center/wakai-backend/internal/platform/observability"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
	rateLimiterBurst        = 5
)

// ErrNoChoices is returned when the API responds without any completion.
var ErrNoChoices = errors.New("no choices in completion response")

// Message is one chat turn as received from or returned to callers.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the assistant's answer: either plain text or tool calls for
// the caller to dispatch.
type Reply struct {
	Message   string            `json:"message,omitempty"`
	ToolCalls []openai.ToolCall `json:"tool_calls,omitempty"`
}

// Client is a rate-limited OpenAI chat client with a consecutive-failure
// circuit breaker.
type Client struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

func New(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		cfg:         cfg,
		client:      openai.NewClient(cfg.OpenAIAPIKey),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPS)), rateLimiterBurst),
	}
}

func (c *Client) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("circuit breaker is open until %v", c.circuitOpenUntil)
	}

	return nil
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures = 0
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures++

	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionMessage, error) {
	if err := c.checkCircuit(); err != nil {
		return openai.ChatCompletionMessage{}, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("rate limiter error: %w", err)
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	observability.AssistantRequestDuration.WithLabelValues(req.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()
		observability.AssistantRequests.WithLabelValues("error").Inc()

		return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion: %w", err)
	}

	c.recordSuccess()
	observability.AssistantRequests.WithLabelValues("ok").Inc()

	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}

	return resp.Choices[0].Message, nil
}

// Chat answers a dashboard conversation with the full tool schema. When
// the model requests tools, the calls are returned for the frontend to
// dispatch.
func (c *Client) Chat(ctx context.Context, history []Message) (Reply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	msg, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.OpenAIModel,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Tools:       tools,
	})
	if err != nil {
		return Reply{}, err
	}

	if len(msg.ToolCalls) > 0 {
		return Reply{ToolCalls: msg.ToolCalls}, nil
	}

	return Reply{Message: msg.Content}, nil
}

// Respond answers a relay-bot conversation in plain text, no tools.
func (c *Client) Respond(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: relayPrompt,
	})

	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	msg, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.OpenAIModel,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	return msg.Content, nil
}
