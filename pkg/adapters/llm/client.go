// Package llm adapts a langchaingo model to the completion port used by
// the director and coordinators.
//
// The client targets any OpenAI-compatible endpoint, so a local inference
// server works the same as the hosted API.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq/concierge/pkg/ports"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrEmptyPrompt indicates an empty prompt.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
)

// Config holds the completion client configuration.
type Config struct {
	// BaseURL of an OpenAI-compatible API. Empty means the default endpoint.
	BaseURL string
	// Model is the model identifier to request.
	Model string
	// APIKey authenticates against the endpoint.
	APIKey string
	// Temperature applies to every completion.
	Temperature float64
}

// Client implements ports.CompletionPort over langchaingo.
type Client struct {
	model       llms.Model
	temperature float64
}

// New creates a completion client for an OpenAI-compatible endpoint.
func New(config Config) (*Client, error) {
	if config.Model == "" {
		return nil, errors.New("model is required")
	}

	apiKey := config.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for local endpoints.
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	return &Client{model: model, temperature: config.Temperature}, nil
}

// NewFromModel wraps an already-constructed langchaingo model.
func NewFromModel(model llms.Model, temperature float64) *Client {
	return &Client{model: model, temperature: temperature}
}

// Complete sends a single prompt and returns the raw model text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	return out, nil
}

var _ ports.CompletionPort = (*Client)(nil)
