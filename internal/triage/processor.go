package triage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

const (
	defaultTopK          = 3
	defaultMinSimilarity = 0.1
	noSolution           = "No solution provided"
	notAvailable         = "N/A"
)

// Input carries the conversation and the collaborator's extracted fields.
type Input struct {
	Conversation string
	Issue        string
	Sentiment    string
	Summary      string
	// ProposedSolution is used when no historical case matches.
	ProposedSolution string
}

// Processor runs the triage pipeline for one request at a time; it holds no
// per-request state and may be shared between goroutines.
type Processor struct {
	ranker        *Ranker
	rules         *Rules
	topK          int
	minSimilarity float64
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithTopK sets how many similar cases are reported.
func WithTopK(k int) ProcessorOption {
	return func(p *Processor) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithMinSimilarity sets the similarity a case must exceed to count as a match.
func WithMinSimilarity(min float64) ProcessorOption {
	return func(p *Processor) {
		p.minSimilarity = min
	}
}

// WithRanker replaces the default unigram ranker.
func WithRanker(r *Ranker) ProcessorOption {
	return func(p *Processor) {
		if r != nil {
			p.ranker = r
		}
	}
}

// NewProcessor builds a processor; nil rules means DefaultRules.
func NewProcessor(rules *Rules, opts ...ProcessorOption) *Processor {
	if rules == nil {
		rules = DefaultRules()
	}
	p := &Processor{
		ranker:        NewRanker(nil),
		rules:         rules,
		topK:          defaultTopK,
		minSimilarity: defaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates the input, ranks the corpus, scores confidence, applies the
// rules and assembles the result. On failure the returned result is the
// placeholder so callers always have a record to store.
func (p *Processor) Process(in Input, corpus []domain.HistoricalTicket) (domain.AnalysisResult, error) {
	if strings.TrimSpace(in.Conversation) == "" {
		return p.Placeholder(in), fmt.Errorf("%w: conversation is blank", ErrEmptyInput)
	}
	issue := strings.TrimSpace(in.Issue)
	if issue == "" {
		return p.Placeholder(in), fmt.Errorf("%w: extracted issue is blank", ErrEmptyInput)
	}

	matches, err := p.rank(issue, corpus)
	if err != nil {
		return p.Placeholder(in), err
	}

	similar := make([]domain.SimilarCase, 0, p.topK)
	similarities := make([]float64, 0, p.topK)
	historical := make([]HistoricalMatch, 0, len(matches))
	for i, m := range matches {
		ticket := corpus[m.Index]
		historical = append(historical, HistoricalMatch{
			Similarity:      m.Similarity,
			ResolutionHours: ticket.ResolutionHours,
		})
		if i >= p.topK {
			continue
		}
		similar = append(similar, domain.SimilarCase{
			Issue:      ticket.Issue,
			Solution:   ticket.Solution,
			Sentiment:  ticket.Sentiment,
			Priority:   ticket.Priority,
			Similarity: roundTo(m.Similarity, 4),
		})
		similarities = append(similarities, m.Similarity)
	}

	confidence := EstimateConfidence(similarities)
	decision := p.rules.Classify(issue, in.Sentiment, historical)

	return domain.AnalysisResult{
		Summary:       orDefault(in.Summary, notAvailable),
		Issue:         issue,
		Solution:      suggestSolution(similar, in.ProposedSolution),
		Priority:      decision.Priority,
		Team:          decision.Team,
		EstimatedTime: decision.EstimatedHours,
		Confidence:    confidence,
		SimilarCases:  similar,
		ActionItems:   decision.ActionItems,
		Sentiment:     string(domain.ParseSentiment(in.Sentiment)),
	}, nil
}

// Placeholder is the minimal record stored when triage fails.
func (p *Processor) Placeholder(in Input) domain.AnalysisResult {
	return domain.AnalysisResult{
		Summary:       orDefault(in.Summary, notAvailable),
		Issue:         orDefault(in.Issue, notAvailable),
		Solution:      notAvailable,
		Priority:      domain.PriorityMedium,
		Team:          domain.TeamTechnical,
		EstimatedTime: p.rules.EstimateHours(domain.PriorityMedium, nil),
		Confidence:    0.0,
		SimilarCases:  []domain.SimilarCase{},
		ActionItems: []string{
			"Assign ticket for manual triage review",
			"Send initial response to customer",
		},
		Sentiment: string(domain.ParseSentiment(in.Sentiment)),
	}
}

func (p *Processor) rank(issue string, corpus []domain.HistoricalTicket) ([]Match, error) {
	if len(corpus) == 0 {
		return nil, nil
	}
	texts := make([]string, len(corpus))
	for i, ticket := range corpus {
		texts[i] = ticket.Issue
	}
	matches, err := p.ranker.Rank(issue, texts, 0, p.minSimilarity)
	if errors.Is(err, ErrNoCorpus) {
		return nil, nil
	}
	return matches, err
}

func suggestSolution(similar []domain.SimilarCase, proposed string) string {
	if len(similar) > 0 && strings.TrimSpace(similar[0].Solution) != "" {
		return similar[0].Solution
	}
	return orDefault(proposed, noSolution)
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
