package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

const conversation = "Customer: checkout fails\nAgent: looking into it"

func sampleCorpus() []domain.HistoricalTicket {
	return []domain.HistoricalTicket{
		{
			Issue:           "payment gateway SSL certificate error",
			Solution:        "Upgrade to TLS 1.3",
			Sentiment:       domain.SentimentNegative,
			Priority:        domain.PriorityHigh,
			ResolutionHours: hours(6),
		},
		{
			Issue:     "software installation fails halfway",
			Solution:  "Run installer as administrator",
			Sentiment: domain.SentimentNeutral,
			Priority:  domain.PriorityMedium,
		},
		{
			Issue:     "forgot account password",
			Solution:  "Send reset link",
			Sentiment: domain.SentimentNeutral,
			Priority:  domain.PriorityLow,
		},
	}
}

func TestProcess_ScenarioIdenticalIssue(t *testing.T) {
	p := NewProcessor(nil)
	result, err := p.Process(Input{
		Conversation: conversation,
		Issue:        "payment gateway SSL certificate error",
		Sentiment:    "Neutral",
		Summary:      "Checkout breaks on TLS",
	}, sampleCorpus())
	require.NoError(t, err)

	require.NotEmpty(t, result.SimilarCases)
	assert.InDelta(t, 1.0, result.SimilarCases[0].Similarity, 1e-6)
	assert.Equal(t, domain.PriorityHigh, result.SimilarCases[0].Priority)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, domain.PriorityCritical, result.Priority)
	assert.Equal(t, domain.TeamBilling, result.Team)
	assert.Equal(t, "Upgrade to TLS 1.3", result.Solution)
	assert.Equal(t, 6.0, result.EstimatedTime, "close historical case overrides the table")
	assert.Equal(t, "Checkout breaks on TLS", result.Summary)
	assert.Equal(t, "Neutral", result.Sentiment)
	assert.Len(t, result.ActionItems, 5)
}

func TestProcess_ScenarioEmptyCorpus(t *testing.T) {
	p := NewProcessor(nil)
	result, err := p.Process(Input{
		Conversation:     conversation,
		Issue:            "printer will not print",
		ProposedSolution: "Reinstall the driver",
	}, nil)
	require.NoError(t, err)

	assert.NotNil(t, result.SimilarCases)
	assert.Empty(t, result.SimilarCases)
	assert.Equal(t, 0.1, result.Confidence)
	assert.Equal(t, "Reinstall the driver", result.Solution)
	assert.Equal(t, "N/A", result.Summary)
}

func TestProcess_ScenarioPasswordReset(t *testing.T) {
	p := NewProcessor(nil)
	result, err := p.Process(Input{
		Conversation: conversation,
		Issue:        "password reset not working",
		Sentiment:    "Neutral",
	}, sampleCorpus())
	require.NoError(t, err)

	assert.Equal(t, domain.PriorityMedium, result.Priority)
	assert.Equal(t, domain.TeamSecurity, result.Team)
	assert.Equal(t, 24.0, result.EstimatedTime)
	assert.Equal(t, []string{
		"Route ticket to Security team",
		"Set priority as Medium",
		"Send initial response to customer",
	}, result.ActionItems)
}

func TestProcess_SimilarCasesCappedAndOrdered(t *testing.T) {
	corpus := []domain.HistoricalTicket{
		{Issue: "vpn drops", Solution: "a"},
		{Issue: "vpn drops every hour", Solution: "b"},
		{Issue: "vpn drops on wifi", Solution: "c"},
		{Issue: "vpn drops constantly on wifi", Solution: "d"},
		{Issue: "unrelated billing", Solution: "e"},
	}
	result, err := NewProcessor(nil).Process(Input{Conversation: conversation, Issue: "vpn drops"}, corpus)
	require.NoError(t, err)

	require.Len(t, result.SimilarCases, 3)
	assert.Equal(t, "a", result.SimilarCases[0].Solution)
	for i := 1; i < len(result.SimilarCases); i++ {
		assert.GreaterOrEqual(t, result.SimilarCases[i-1].Similarity, result.SimilarCases[i].Similarity)
	}
}

func TestProcess_NoMatchFallsBackToDefaultSolution(t *testing.T) {
	result, err := NewProcessor(nil).Process(Input{Conversation: conversation, Issue: "quantum flux"}, sampleCorpus())
	require.NoError(t, err)
	assert.Empty(t, result.SimilarCases)
	assert.Equal(t, 0.1, result.Confidence)
	assert.Equal(t, "No solution provided", result.Solution)
}

func TestProcess_EmptyInput(t *testing.T) {
	p := NewProcessor(nil)

	result, err := p.Process(Input{Conversation: "  ", Issue: "x"}, sampleCorpus())
	require.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, KindEmptyInput, KindOf(err))
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, domain.PriorityMedium, result.Priority)

	_, err = p.Process(Input{Conversation: conversation, Issue: "\n"}, sampleCorpus())
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestProcess_VectorizationFailureReturnsPlaceholder(t *testing.T) {
	corpus := []domain.HistoricalTicket{{Issue: "??"}}
	result, err := NewProcessor(nil).Process(Input{Conversation: conversation, Issue: "!!", Summary: "odd"}, corpus)
	require.ErrorIs(t, err, ErrVectorization)
	assert.Equal(t, KindVectorization, KindOf(err))
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, domain.PriorityMedium, result.Priority)
	assert.Equal(t, "odd", result.Summary)
	assert.NotNil(t, result.SimilarCases)
}

func TestProcess_CustomTopK(t *testing.T) {
	p := NewProcessor(nil, WithTopK(1), WithMinSimilarity(0))
	result, err := p.Process(Input{Conversation: conversation, Issue: "software installation"}, sampleCorpus())
	require.NoError(t, err)
	require.Len(t, result.SimilarCases, 1)
	assert.Equal(t, "Run installer as administrator", result.SimilarCases[0].Solution)
}
