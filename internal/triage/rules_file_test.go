package triage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func TestLoadRulesFile_EmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRulesFile("")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityCritical, rules.Priority("site down", "Neutral"))
}

func TestLoadRulesFile_OverlaysSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
team_rules:
  - team: customer_success
    keywords: [refund, Renewal]
  - team: Billing
    keywords: [invoice]
resolution_hours:
  Medium: 12
historical_similarity_threshold: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRulesFile(path)
	require.NoError(t, err)

	assert.Equal(t, domain.TeamCustomerSuccess, rules.Team("Renewal refund request"))
	assert.Equal(t, domain.TeamTechnical, rules.Team("password expired"), "security table was replaced")
	assert.Equal(t, 12.0, rules.EstimateHours(domain.PriorityMedium, nil))
	assert.Equal(t, 4.0, rules.EstimateHours(domain.PriorityCritical, nil))
	assert.Equal(t, 9.0, rules.EstimateHours(domain.PriorityMedium, []HistoricalMatch{{Similarity: 0.6, ResolutionHours: hours(9)}}))
	assert.Equal(t, domain.PriorityCritical, rules.Priority("emergency", "Neutral"), "priority rules keep defaults")
}

func TestParseRules_Invalid(t *testing.T) {
	_, err := ParseRules([]byte("team_rules: [oops"))
	require.ErrorIs(t, err, ErrRuleEngine)

	_, err = ParseRules([]byte("escalating_sentiments: [grumpy]"))
	require.ErrorIs(t, err, ErrRuleEngine)

	_, err = ParseRules([]byte("resolution_hours: {Someday: 3}"))
	require.ErrorIs(t, err, ErrRuleEngine)
}

func TestLoadRulesFile_MissingFile(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
