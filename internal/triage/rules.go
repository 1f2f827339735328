package triage

import (
	"fmt"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

// PriorityRule raises a ticket to Priority when the issue mentions any keyword.
type PriorityRule struct {
	Priority domain.Priority
	Keywords []string
}

// TeamRule routes a ticket to Team when the issue mentions any keyword.
type TeamRule struct {
	Team     domain.Team
	Keywords []string
}

// RuleSet is the full keyword configuration of the rule engine.
// Priority rules are evaluated in order; team rules are ordered by precedence.
type RuleSet struct {
	EscalatingSentiments []domain.Sentiment
	PriorityRules        []PriorityRule
	TeamRules            []TeamRule
	DefaultPriority      domain.Priority
	DefaultTeam          domain.Team
	ResolutionHours      map[domain.Priority]float64
	// HistoricalThreshold is the similarity a past case needs before its
	// resolution time replaces the table value.
	HistoricalThreshold float64
}

// DefaultRuleSet returns the built-in keyword tables.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		EscalatingSentiments: []domain.Sentiment{domain.SentimentUrgent, domain.SentimentNegative},
		PriorityRules: []PriorityRule{
			{Priority: domain.PriorityCritical, Keywords: []string{"critical", "down", "error", "broken", "urgent", "emergency"}},
			{Priority: domain.PriorityHigh, Keywords: []string{"important", "serious", "problem", "failing"}},
			{Priority: domain.PriorityLow, Keywords: []string{"question", "help", "guidance"}},
		},
		TeamRules: []TeamRule{
			{Team: domain.TeamTechnical, Keywords: []string{"installation", "error", "bug", "crash", "technical", "router", "software", "closing"}},
			{Team: domain.TeamBilling, Keywords: []string{"payment", "charge", "invoice", "billing"}},
			{Team: domain.TeamSecurity, Keywords: []string{"password", "access", "authentication", "security"}},
			{Team: domain.TeamProduct, Keywords: []string{"feature", "functionality", "product"}},
			{Team: domain.TeamCustomerSuccess, Keywords: []string{"account", "subscription", "upgrade"}},
		},
		DefaultPriority: domain.PriorityMedium,
		DefaultTeam:     domain.TeamTechnical,
		ResolutionHours: map[domain.Priority]float64{
			domain.PriorityCritical: 4.0,
			domain.PriorityHigh:     8.0,
			domain.PriorityMedium:   24.0,
			domain.PriorityLow:      48.0,
		},
		HistoricalThreshold: 0.7,
	}
}

// Validate checks that every table is usable.
func (s RuleSet) Validate() error {
	if !s.DefaultPriority.Valid() {
		return fmt.Errorf("%w: invalid default priority %q", ErrRuleEngine, s.DefaultPriority)
	}
	if _, ok := domain.ParseTeam(string(s.DefaultTeam)); !ok {
		return fmt.Errorf("%w: invalid default team %q", ErrRuleEngine, s.DefaultTeam)
	}
	for i, rule := range s.PriorityRules {
		if !rule.Priority.Valid() {
			return fmt.Errorf("%w: priority rule %d has invalid priority %q", ErrRuleEngine, i, rule.Priority)
		}
		if len(nonBlank(rule.Keywords)) == 0 {
			return fmt.Errorf("%w: priority rule %d has no keywords", ErrRuleEngine, i)
		}
	}
	if len(s.TeamRules) == 0 {
		return fmt.Errorf("%w: no team rules", ErrRuleEngine)
	}
	for i, rule := range s.TeamRules {
		if _, ok := domain.ParseTeam(string(rule.Team)); !ok {
			return fmt.Errorf("%w: team rule %d has invalid team %q", ErrRuleEngine, i, rule.Team)
		}
		if len(nonBlank(rule.Keywords)) == 0 {
			return fmt.Errorf("%w: team rule %d has no keywords", ErrRuleEngine, i)
		}
	}
	for _, priority := range domain.Priorities {
		if hours, ok := s.ResolutionHours[priority]; !ok || hours <= 0 {
			return fmt.Errorf("%w: missing resolution hours for %s", ErrRuleEngine, priority)
		}
	}
	if s.HistoricalThreshold < 0 || s.HistoricalThreshold > 1 {
		return fmt.Errorf("%w: historical threshold %.2f outside [0,1]", ErrRuleEngine, s.HistoricalThreshold)
	}
	return nil
}

// HistoricalMatch is a scored historical case offered to the rule engine.
type HistoricalMatch struct {
	Similarity      float64
	ResolutionHours *float64
}

// Decision is the rule engine output for one ticket.
type Decision struct {
	Priority       domain.Priority
	Team           domain.Team
	EstimatedHours float64
	ActionItems    []string
}

// Rules is an immutable, validated rule engine. It is safe for concurrent use.
type Rules struct {
	set RuleSet
}

// NewRules validates set and lowercases its keywords.
func NewRules(set RuleSet) (*Rules, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	normalized := RuleSet{
		EscalatingSentiments: append([]domain.Sentiment(nil), set.EscalatingSentiments...),
		DefaultPriority:      set.DefaultPriority,
		ResolutionHours:      make(map[domain.Priority]float64, len(set.ResolutionHours)),
		HistoricalThreshold:  set.HistoricalThreshold,
	}
	normalized.DefaultTeam, _ = domain.ParseTeam(string(set.DefaultTeam))
	for _, rule := range set.PriorityRules {
		normalized.PriorityRules = append(normalized.PriorityRules, PriorityRule{
			Priority: rule.Priority,
			Keywords: lowerAll(nonBlank(rule.Keywords)),
		})
	}
	for _, rule := range set.TeamRules {
		team, _ := domain.ParseTeam(string(rule.Team))
		normalized.TeamRules = append(normalized.TeamRules, TeamRule{
			Team:     team,
			Keywords: lowerAll(nonBlank(rule.Keywords)),
		})
	}
	for priority, hours := range set.ResolutionHours {
		normalized.ResolutionHours[priority] = hours
	}
	return &Rules{set: normalized}, nil
}

// DefaultRules returns the engine built from DefaultRuleSet.
func DefaultRules() *Rules {
	rules, err := NewRules(DefaultRuleSet())
	if err != nil {
		panic(err)
	}
	return rules
}

// Classify derives priority, team, resolution estimate and action items.
func (r *Rules) Classify(issue, sentiment string, matches []HistoricalMatch) Decision {
	priority := r.Priority(issue, sentiment)
	team := r.Team(issue)
	return Decision{
		Priority:       priority,
		Team:           team,
		EstimatedHours: r.EstimateHours(priority, matches),
		ActionItems:    ActionItems(priority, team),
	}
}

// Priority applies the sentiment rule first, then the keyword rules in order.
func (r *Rules) Priority(issue, sentiment string) domain.Priority {
	mood := domain.ParseSentiment(sentiment)
	for _, escalating := range r.set.EscalatingSentiments {
		if mood == escalating {
			return domain.PriorityHigh
		}
	}
	text := strings.ToLower(issue)
	for _, rule := range r.set.PriorityRules {
		if containsAny(text, rule.Keywords) {
			return rule.Priority
		}
	}
	return r.set.DefaultPriority
}

// Team routes to the team whose keyword appears earliest in the issue.
// When two teams match at the same position the one listed first wins.
func (r *Rules) Team(issue string) domain.Team {
	text := strings.ToLower(issue)
	best := r.set.DefaultTeam
	bestAt := -1
	for _, rule := range r.set.TeamRules {
		at := firstIndex(text, rule.Keywords)
		if at < 0 {
			continue
		}
		if bestAt < 0 || at < bestAt {
			best, bestAt = rule.Team, at
		}
	}
	return best
}

// EstimateHours averages resolution times of close historical matches,
// falling back to the per-priority table.
func (r *Rules) EstimateHours(priority domain.Priority, matches []HistoricalMatch) float64 {
	var total float64
	var count int
	for _, m := range matches {
		if m.Similarity > r.set.HistoricalThreshold && m.ResolutionHours != nil {
			total += *m.ResolutionHours
			count++
		}
	}
	if count > 0 {
		return total / float64(count)
	}
	if hours, ok := r.set.ResolutionHours[priority]; ok {
		return hours
	}
	return r.set.ResolutionHours[r.set.DefaultPriority]
}

// ActionItems lists the follow-up steps for a routed ticket.
func ActionItems(priority domain.Priority, team domain.Team) []string {
	items := []string{
		fmt.Sprintf("Route ticket to %s team", team),
		fmt.Sprintf("Set priority as %s", priority),
		"Send initial response to customer",
	}
	if priority.IsEscalated() {
		items = append(items, "Schedule immediate team review", "Prepare escalation path if needed")
	}
	return items
}

func containsAny(text string, keywords []string) bool {
	return firstIndex(text, keywords) >= 0
}

func firstIndex(text string, keywords []string) int {
	at := -1
	for _, kw := range keywords {
		if i := strings.Index(text, kw); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	return at
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}
