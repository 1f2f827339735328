package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

// scriptedGenerator answers by the first matching prompt prefix.
type scriptedGenerator struct {
	mu      sync.Mutex
	answers map[string]string
	prompts []string
	err     error
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	for prefix, answer := range g.answers {
		if strings.HasPrefix(prompt, prefix) {
			return answer, nil
		}
	}
	return "", nil
}

const conversation = "User: The payment page throws an SSL error\nAssistant: Which browser?"

func TestConversationAnalyzer_Extract(t *testing.T) {
	gen := &scriptedGenerator{answers: map[string]string{
		"Summarize":             " Customer cannot pay because of an SSL error. ",
		"What is the single":    "Payment gateway SSL error",
		"Analyze the sentiment": "Negative.",
		"Review the technical":  "Renew the certificate chain",
	}}
	analyzer := NewConversationAnalyzer(gen)

	out, err := analyzer.Extract(context.Background(), conversation)
	require.NoError(t, err)
	assert.Equal(t, Extraction{
		Summary:          "Customer cannot pay because of an SSL error.",
		Issue:            "Payment gateway SSL error",
		Sentiment:        domain.SentimentNegative,
		ProposedSolution: "Renew the certificate chain",
	}, out)
	require.Len(t, gen.prompts, 4)
	for _, prompt := range gen.prompts {
		assert.Contains(t, prompt, conversation)
	}
}

func TestConversationAnalyzer_ExtractError(t *testing.T) {
	analyzer := NewConversationAnalyzer(&scriptedGenerator{err: errors.New("boom")})
	_, err := analyzer.Extract(context.Background(), conversation)
	require.Error(t, err)
}

func TestConversationAnalyzer_ChatReplyCarriesSubmitRule(t *testing.T) {
	gen := &scriptedGenerator{answers: map[string]string{"You are": SubmitReply}}
	reply, err := NewConversationAnalyzer(gen).ChatReply(context.Background(), "User: I am submitting a ticket")
	require.NoError(t, err)
	assert.Equal(t, SubmitReply, reply)
	assert.Contains(t, gen.prompts[0], `"Yes, sure."`)
}

func TestConversationAnalyzer_EmailDraft(t *testing.T) {
	gen := &scriptedGenerator{answers: map[string]string{"Write a short": "Dear customer"}}
	draft, err := NewConversationAnalyzer(gen).EmailDraft(context.Background(), "TICKET-1", domain.AnalysisResult{
		Issue:         "VPN drops",
		Priority:      domain.PriorityHigh,
		Team:          domain.TeamTechnical,
		EstimatedTime: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dear customer", draft)
	assert.Contains(t, gen.prompts[0], "TICKET-1")
	assert.Contains(t, gen.prompts[0], "Priority: High")
	assert.Contains(t, gen.prompts[0], "8.0 hours")
}

func TestFallbackGenerator(t *testing.T) {
	failing := GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	gen := NewFallbackGenerator(failing, nil)

	text, err := gen.Generate(context.Background(), "Customer payment was declined")
	require.NoError(t, err)
	assert.Equal(t, paymentSteps, text)

	text, err = gen.Generate(context.Background(), "Installation hangs at 90%")
	require.NoError(t, err)
	assert.Equal(t, installationSteps, text)

	text, err = NewFallbackGenerator(nil, nil).Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, genericSteps, text)

	ok := GeneratorFunc(func(context.Context, string) (string, error) { return "real answer", nil })
	text, err = NewFallbackGenerator(ok, nil).Generate(context.Background(), "payment")
	require.NoError(t, err)
	assert.Equal(t, "real answer", text)
}

func TestConversationAnalyzer_FallbackOnlyForReplies(t *testing.T) {
	backendErr := errors.New("quota exceeded")
	analyzer := NewConversationAnalyzer(NewFallbackGenerator(&scriptedGenerator{err: backendErr}, nil))
	ctx := context.Background()

	_, err := analyzer.Extract(ctx, conversation)
	require.ErrorIs(t, err, backendErr)
	_, err = analyzer.Issue(ctx, conversation)
	require.ErrorIs(t, err, backendErr)
	mood, err := analyzer.Sentiment(ctx, conversation)
	require.ErrorIs(t, err, backendErr)
	assert.Equal(t, domain.SentimentUnknown, mood)

	solution, err := analyzer.Solution(ctx, conversation)
	require.NoError(t, err)
	assert.Equal(t, paymentSteps, solution)

	reply, err := analyzer.ChatReply(ctx, conversation)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	_, err = NewConversationAnalyzer(NewFallbackGenerator(nil, nil)).Summary(ctx, conversation)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestConversationAnalyzer_BlankExtraction(t *testing.T) {
	analyzer := NewConversationAnalyzer(&scriptedGenerator{answers: map[string]string{"What is the single": "   "}})
	_, err := analyzer.Issue(context.Background(), conversation)
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicGenerator_NotConfigured(t *testing.T) {
	_, err := NewAnthropicGenerator(AnthropicConfig{Model: "claude-3-5-haiku-latest"}, nil).
		Generate(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotConfigured)
}
