package googleai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dv-relay/internal/observability"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

var (
	ErrMissingAPIKey   = errors.New("google ai api key is required")
	ErrEmptyCompletion = errors.New("gemini returned an empty response")
)

// Client generates short supportive replies with Gemini.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *observability.Logger
}

// NewClient creates a Gemini client. Close releases its connection.
func NewClient(ctx context.Context, apiKey, model, system string, logger *observability.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}

	m := c.GenerativeModel(model)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	return &Client{client: c, model: m, logger: logger}, nil
}

// Generate returns the model's text answer for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "provider", Value: "gemini"})

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error(ctx, "Failed to generate content", err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
