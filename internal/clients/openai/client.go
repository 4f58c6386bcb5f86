package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dv-relay/internal/observability"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const DefaultModel = "gpt-4o-mini"

var (
	ErrMissingAPIKey   = errors.New("openai api key is required")
	ErrEmptyCompletion = errors.New("openai returned an empty completion")
)

type chatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Config configures the chat client.
type Config struct {
	APIKey  string
	Model   string
	System  string
	BaseURL string // tests and proxies
}

// Client generates short supportive replies with chat completions.
type Client struct {
	completions chatCompletions
	model       string
	system      string
	logger      *observability.Logger
}

// NewClient creates a chat client.
func NewClient(cfg Config, logger *observability.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	client := openai.NewClient(opts...)
	return &Client{
		completions: &client.Chat.Completions,
		model:       model,
		system:      strings.TrimSpace(cfg.System),
		logger:      logger,
	}, nil
}

// Generate returns the completion text for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "provider", Value: "openai"},
		observability.Field{Key: "model", Value: c.model},
	)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := c.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		c.logger.Error(ctx, "chat completion failed", err)
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
