package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// AnthropicConfig selects the model and sampling settings.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// AnthropicGenerator calls Claude through langchaingo.
type AnthropicGenerator struct {
	model       llms.Model
	name        string
	maxTokens   int
	temperature float64
}

func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	model, err := anthropic.New(
		anthropic.WithToken(cfg.APIKey),
		anthropic.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic client: %w", err)
	}
	return NewModelGenerator(model, cfg), nil
}

// NewModelGenerator wraps any langchaingo model with the given settings.
func NewModelGenerator(model llms.Model, cfg AnthropicConfig) *AnthropicGenerator {
	return &AnthropicGenerator{
		model:       model,
		name:        cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithMaxTokens(g.maxTokens),
		llms.WithTemperature(g.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.name, err)
	}
	return out, nil
}

// Name returns the configured model name.
func (g *AnthropicGenerator) Name() string {
	return g.name
}
