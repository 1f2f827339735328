package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// AnthropicConfig configures the Anthropic backend.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// AnthropicGenerator generates text with the Anthropic Messages API.
type AnthropicGenerator struct {
	client     anthropic.Client
	cfg        AnthropicConfig
	logger     *zap.Logger
	configured bool
}

// NewAnthropicGenerator builds a generator. Without an API key every call
// fails with ErrNotConfigured.
func NewAnthropicGenerator(cfg AnthropicConfig, logger *zap.Logger) *AnthropicGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	g := &AnthropicGenerator{cfg: cfg, logger: logger}
	if strings.TrimSpace(cfg.APIKey) != "" {
		g.client = anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		g.configured = true
	}
	return g
}

// Generate sends prompt as a single user message and returns the first text block.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.configured {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: g.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			g.logger.Debug("llm response",
				zap.String("model", g.cfg.Model),
				zap.Int("chars", len(block.Text)),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", ErrEmptyResponse
}
