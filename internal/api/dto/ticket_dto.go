package dto

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// ChatRequest payload for chat replies and ticket submission.
type ChatRequest struct {
	Conversation []domain.ChatMessage `json:"conversation_history"`
}

// ChatResponse carries the assistant's next message.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// AnalyzeRequest runs the triage core on already-extracted fields.
type AnalyzeRequest struct {
	Conversation     string `json:"conversation"`
	Issue            string `json:"issue"`
	Sentiment        string `json:"sentiment"`
	Summary          string `json:"summary"`
	ProposedSolution string `json:"proposed_solution"`
}

// NotifyRequest payload for manual alerts.
type NotifyRequest struct {
	Note      string `json:"note"`
	Recipient string `json:"recipient"`
}

// DraftResponse carries a generated customer email.
type DraftResponse struct {
	TicketKey string `json:"ticket_key"`
	Draft     string `json:"draft"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"ticket_id"`
	Status      domain.TicketStatus `json:"status"`
	Priority    domain.Priority     `json:"priority_level"`
	Team        domain.Team         `json:"assigned_team"`
	Issue       string              `json:"extracted_issue"`
	Confidence  float64             `json:"confidence_score"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides the full triaged ticket.
type TicketDetailResponse struct {
	ID            string                `json:"id"`
	ExternalKey   string                `json:"ticket_id"`
	Status        domain.TicketStatus   `json:"status"`
	FailureReason *string               `json:"failure_reason,omitempty"`
	Conversation  []domain.ChatMessage  `json:"conversation_history"`
	Analysis      domain.AnalysisResult `json:"analysis"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// NewTicketSummary maps a ticket to its list view.
func NewTicketSummary(t *domain.TriagedTicket) TicketSummary {
	return TicketSummary{
		ID:          t.ID,
		ExternalKey: t.ExternalKey,
		Status:      t.Status,
		Priority:    t.Analysis.Priority,
		Team:        t.Analysis.Team,
		Issue:       t.Analysis.Issue,
		Confidence:  t.Analysis.Confidence,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket to its detail view.
func NewTicketDetail(t *domain.TriagedTicket) TicketDetailResponse {
	conversation := t.Conversation
	if conversation == nil {
		conversation = []domain.ChatMessage{}
	}
	return TicketDetailResponse{
		ID:            t.ID,
		ExternalKey:   t.ExternalKey,
		Status:        t.Status,
		FailureReason: t.FailureReason,
		Conversation:  conversation,
		Analysis:      t.Analysis,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
