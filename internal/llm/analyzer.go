package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/triage-service/internal/domain"
)

// SubmitReply is the only reply allowed once the customer asks to submit a ticket.
const SubmitReply = "Yes, sure."

// Extraction is what the collaborator derives from a conversation before triage.
type Extraction struct {
	Summary          string
	Issue            string
	Sentiment        domain.Sentiment
	ProposedSolution string
}

// ConversationAnalyzer builds prompts for a conversation and interprets replies.
// Summary, issue and sentiment extraction always surface backend errors;
// only solutions, chat replies and email drafts may use canned fallbacks.
type ConversationAnalyzer struct {
	strict  TextGenerator
	lenient TextGenerator
}

// NewConversationAnalyzer wraps gen. When gen is a *FallbackGenerator its
// primary backend serves the extraction prompts.
func NewConversationAnalyzer(gen TextGenerator) *ConversationAnalyzer {
	a := &ConversationAnalyzer{strict: gen, lenient: gen}
	if fb, ok := gen.(*FallbackGenerator); ok {
		a.strict = fb.Primary()
	}
	return a
}

// Summary returns a one sentence summary.
func (a *ConversationAnalyzer) Summary(ctx context.Context, conversation string) (string, error) {
	return a.extract(ctx, fmt.Sprintf(summaryPrompt, conversation))
}

// Issue extracts the main technical problem.
func (a *ConversationAnalyzer) Issue(ctx context.Context, conversation string) (string, error) {
	return a.extract(ctx, fmt.Sprintf(issuePrompt, conversation))
}

// Sentiment classifies the last customer message.
func (a *ConversationAnalyzer) Sentiment(ctx context.Context, conversation string) (domain.Sentiment, error) {
	text, err := a.extract(ctx, fmt.Sprintf(sentimentPrompt, conversation))
	if err != nil {
		return domain.SentimentUnknown, err
	}
	return domain.ParseSentiment(text), nil
}

// Solution extracts the proposed fix or next steps.
func (a *ConversationAnalyzer) Solution(ctx context.Context, conversation string) (string, error) {
	return a.ask(ctx, fmt.Sprintf(solutionPrompt, conversation))
}

// Extract runs the summary, issue, sentiment and solution prompts concurrently.
func (a *ConversationAnalyzer) Extract(ctx context.Context, conversation string) (Extraction, error) {
	var out Extraction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Summary, err = a.Summary(gctx, conversation)
		return err
	})
	g.Go(func() (err error) {
		out.Issue, err = a.Issue(gctx, conversation)
		return err
	})
	g.Go(func() (err error) {
		out.Sentiment, err = a.Sentiment(gctx, conversation)
		return err
	})
	g.Go(func() (err error) {
		out.ProposedSolution, err = a.Solution(gctx, conversation)
		return err
	})
	if err := g.Wait(); err != nil {
		return Extraction{}, fmt.Errorf("extract conversation: %w", err)
	}
	return out, nil
}

// ChatReply produces the next support agent message.
func (a *ConversationAnalyzer) ChatReply(ctx context.Context, conversation string) (string, error) {
	return a.ask(ctx, fmt.Sprintf(chatReplyPrompt, SubmitReply, conversation))
}

// EmailDraft writes a customer-facing email for a triaged ticket.
func (a *ConversationAnalyzer) EmailDraft(ctx context.Context, key string, result domain.AnalysisResult) (string, error) {
	return a.ask(ctx, fmt.Sprintf(emailDraftPrompt,
		key,
		result.Issue,
		result.Summary,
		result.Priority,
		result.Team,
		result.Solution,
		result.EstimatedTime,
	))
}

func (a *ConversationAnalyzer) extract(ctx context.Context, prompt string) (string, error) {
	text, err := a.strict.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (a *ConversationAnalyzer) ask(ctx context.Context, prompt string) (string, error) {
	text, err := a.lenient.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
