// Package llm holds the text-generation collaborator used to summarize
// conversations and draft replies. The triage core never calls it.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when no backend credentials are available.
	ErrNotConfigured = errors.New("text generator not configured")
	// ErrEmptyResponse is returned when the backend answers without text.
	ErrEmptyResponse = errors.New("text generator returned no text")
)

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function into a TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
