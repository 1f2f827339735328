package corpus

import (
	"github.com/spec-kit/triage-service/internal/domain"
)

// Corpus is an immutable, ordered set of historical tickets.
type Corpus struct {
	tickets []domain.HistoricalTicket
	source  string
}

// New copies tickets into a new corpus labelled with its source.
func New(source string, tickets []domain.HistoricalTicket) *Corpus {
	return &Corpus{
		tickets: append([]domain.HistoricalTicket(nil), tickets...),
		source:  source,
	}
}

// Len returns the number of tickets. A nil corpus is empty.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tickets)
}

// At returns the ticket at index i.
func (c *Corpus) At(i int) (domain.HistoricalTicket, bool) {
	if c == nil || i < 0 || i >= len(c.tickets) {
		return domain.HistoricalTicket{}, false
	}
	return c.tickets[i], true
}

// Tickets exposes the backing slice. Callers must treat it as read-only.
func (c *Corpus) Tickets() []domain.HistoricalTicket {
	if c == nil {
		return nil
	}
	return c.tickets
}

// Issues returns the issue text of every ticket in corpus order.
func (c *Corpus) Issues() []string {
	issues := make([]string, c.Len())
	for i := range issues {
		issues[i] = c.tickets[i].Issue
	}
	return issues
}

// Source describes where the corpus was loaded from.
func (c *Corpus) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Stats summarizes a corpus for operators.
type Stats struct {
	Source              string                   `json:"source"`
	Tickets             int                      `json:"tickets"`
	ByPriority          map[domain.Priority]int  `json:"by_priority"`
	BySentiment         map[domain.Sentiment]int `json:"by_sentiment"`
	WithResolutionHours int                      `json:"with_resolution_hours"`
	AvgResolutionHours  float64                  `json:"avg_resolution_hours"`
}

// Stats computes per-priority and per-sentiment counts.
func (c *Corpus) Stats() Stats {
	stats := Stats{
		Source:      c.Source(),
		Tickets:     c.Len(),
		ByPriority:  map[domain.Priority]int{},
		BySentiment: map[domain.Sentiment]int{},
	}
	var total float64
	for _, ticket := range c.Tickets() {
		stats.ByPriority[ticket.Priority]++
		stats.BySentiment[ticket.Sentiment]++
		if ticket.ResolutionHours != nil {
			stats.WithResolutionHours++
			total += *ticket.ResolutionHours
		}
	}
	if stats.WithResolutionHours > 0 {
		stats.AvgResolutionHours = total / float64(stats.WithResolutionHours)
	}
	return stats
}
