package domain

import "time"

// HistoricalTicket is one resolved ticket from the comparison corpus.
type HistoricalTicket struct {
	Issue           string
	Solution        string
	Sentiment       Sentiment
	Priority        Priority
	ResolutionHours *float64
	Status          string
	ResolvedAt      *time.Time
}
