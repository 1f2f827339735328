package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	paymentSteps = "1. Verify API keys and secrets are correct\n" +
		"2. Check signature generation parameters\n" +
		"3. Ensure all required fields are included\n" +
		"4. Test with sandbox environment first"
	installationSteps = "1. Check system requirements\n" +
		"2. Clear temporary files\n" +
		"3. Run as administrator\n" +
		"4. Disable antivirus temporarily"
	genericSteps = "1. Verify configuration\n" +
		"2. Check system logs\n" +
		"3. Test in isolation\n" +
		"4. Contact support if issue persists"
)

// FallbackGenerator answers with canned troubleshooting steps whenever the
// wrapped generator fails or returns nothing.
type FallbackGenerator struct {
	primary TextGenerator
	logger  *zap.Logger
}

// NewFallbackGenerator wraps primary. A nil primary always falls back.
func NewFallbackGenerator(primary TextGenerator, logger *zap.Logger) *FallbackGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackGenerator{primary: primary, logger: logger}
}

// Primary returns the wrapped generator without fallback. A nil primary is
// reported as ErrNotConfigured.
func (g *FallbackGenerator) Primary() TextGenerator {
	if g.primary == nil {
		return GeneratorFunc(func(context.Context, string) (string, error) {
			return "", ErrNotConfigured
		})
	}
	return g.primary
}

// Generate implements TextGenerator.
func (g *FallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.primary != nil {
		text, err := g.primary.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			g.logger.Warn("text generation failed; using fallback", zap.Error(err))
		}
	}
	return CannedResponse(prompt), nil
}

// CannedResponse picks a step list by the topic mentioned in prompt.
func CannedResponse(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "payment"), strings.Contains(lower, "transaction"):
		return paymentSteps
	case strings.Contains(lower, "installation"):
		return installationSteps
	default:
		return genericSteps
	}
}
