package domain

import "time"

// TicketStatus enumerates lifecycle states for triaged tickets.
type TicketStatus string

const (
	TicketStatusTriaged     TicketStatus = "TRIAGED"
	TicketStatusNeedsReview TicketStatus = "NEEDS_REVIEW"
	TicketStatusNotified    TicketStatus = "NOTIFIED"
	TicketStatusResolved    TicketStatus = "RESOLVED"
)

// TriagedTicket is a submitted conversation together with its analysis.
type TriagedTicket struct {
	ID            string
	ExternalKey   string
	Conversation  []ChatMessage
	Analysis      AnalysisResult
	Status        TicketStatus
	FailureReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
