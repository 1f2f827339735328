package triage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/triage-service/internal/domain"
)

type rulesFile struct {
	EscalatingSentiments []string           `yaml:"escalating_sentiments"`
	PriorityRules        []priorityRuleFile `yaml:"priority_rules"`
	TeamRules            []teamRuleFile     `yaml:"team_rules"`
	DefaultPriority      string             `yaml:"default_priority"`
	DefaultTeam          string             `yaml:"default_team"`
	ResolutionHours      map[string]float64 `yaml:"resolution_hours"`
	HistoricalThreshold  *float64           `yaml:"historical_similarity_threshold"`
}

type priorityRuleFile struct {
	Priority string   `yaml:"priority"`
	Keywords []string `yaml:"keywords"`
}

type teamRuleFile struct {
	Team     string   `yaml:"team"`
	Keywords []string `yaml:"keywords"`
}

// LoadRulesFile overlays the YAML rule tables at path on DefaultRuleSet.
// Sections missing from the file keep their defaults. An empty path returns the defaults.
func LoadRulesFile(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(raw)
}

// ParseRules overlays YAML rule tables on DefaultRuleSet.
func ParseRules(raw []byte) (*Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: decode rules: %v", ErrRuleEngine, err)
	}

	set := DefaultRuleSet()
	if len(file.EscalatingSentiments) > 0 {
		set.EscalatingSentiments = set.EscalatingSentiments[:0]
		for _, label := range file.EscalatingSentiments {
			mood := domain.ParseSentiment(label)
			if mood == domain.SentimentUnknown {
				return nil, fmt.Errorf("%w: unknown sentiment %q", ErrRuleEngine, label)
			}
			set.EscalatingSentiments = append(set.EscalatingSentiments, mood)
		}
	}
	if len(file.PriorityRules) > 0 {
		set.PriorityRules = make([]PriorityRule, 0, len(file.PriorityRules))
		for _, rule := range file.PriorityRules {
			set.PriorityRules = append(set.PriorityRules, PriorityRule{
				Priority: domain.Priority(rule.Priority),
				Keywords: rule.Keywords,
			})
		}
	}
	if len(file.TeamRules) > 0 {
		set.TeamRules = make([]TeamRule, 0, len(file.TeamRules))
		for _, rule := range file.TeamRules {
			set.TeamRules = append(set.TeamRules, TeamRule{
				Team:     domain.Team(rule.Team),
				Keywords: rule.Keywords,
			})
		}
	}
	if file.DefaultPriority != "" {
		set.DefaultPriority = domain.Priority(file.DefaultPriority)
	}
	if file.DefaultTeam != "" {
		set.DefaultTeam = domain.Team(file.DefaultTeam)
	}
	for label, hours := range file.ResolutionHours {
		priority := domain.Priority(label)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: resolution hours for unknown priority %q", ErrRuleEngine, label)
		}
		set.ResolutionHours[priority] = hours
	}
	if file.HistoricalThreshold != nil {
		set.HistoricalThreshold = *file.HistoricalThreshold
	}
	return NewRules(set)
}
