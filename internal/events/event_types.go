package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketTriaged  EventType = "ticket_triaged"
	EventTicketNotified EventType = "ticket_notified"
	EventCorpusReloaded EventType = "corpus_reloaded"
)

// Actor identifies who caused an event. Empty for system events.
type Actor struct {
	StaffID string           `json:"staff_id,omitempty"`
	Role    domain.StaffRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketKey string    `json:"ticket_key,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, ticketKey string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketKey: ticketKey,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketTriagedPayload payload.
type TicketTriagedPayload struct {
	Status     domain.TicketStatus `json:"status"`
	Priority   domain.Priority     `json:"priority"`
	Team       domain.Team         `json:"team"`
	Confidence float64             `json:"confidence"`
	Issue      string              `json:"issue"`
	Summary    string              `json:"summary"`
	Failure    string              `json:"failure,omitempty"`
}

// TicketNotifiedPayload payload.
type TicketNotifiedPayload struct {
	Recipient string `json:"recipient"`
	Note      string `json:"note,omitempty"`
	Trigger   string `json:"trigger"`
	Delivered bool   `json:"delivered"`
}

// CorpusReloadedPayload payload.
type CorpusReloadedPayload struct {
	Source   string `json:"source"`
	Tickets  int    `json:"tickets"`
	Previous int    `json:"previous"`
}
