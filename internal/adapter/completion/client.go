package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNotConfigured is returned by Complete when no API key is set. The
// server still starts; every chat turn then gets the fallback reply.
var ErrNotConfigured = errors.New("completion provider API key is not configured")

// Client talks to an OpenAI-compatible chat completions endpoint such as
// Groq's.
type Client struct {
	client     openai.Client
	model      string
	configured bool
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewClient creates a completion client. Requests are not retried.
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		configured: cfg.APIKey != "",
	}
}

// Complete sends a system prompt and a single user utterance and returns the
// first choice's text.
func (c *Client) Complete(ctx context.Context, utterance, systemPrompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(utterance))

	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(res.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return res.Choices[0].Message.Content, nil
}

// Model returns the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}
