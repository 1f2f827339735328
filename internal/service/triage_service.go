package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/llm"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TriageService turns support conversations into triaged tickets.
type TriageService struct {
	tickets    repository.TriagedTicketRepository
	corpus     *corpus.Store
	processor  *triage.Processor
	analyzer   *llm.ConversationAnalyzer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	TicketRepo repository.TriagedTicketRepository
	Corpus     *corpus.Store
	Processor  *triage.Processor
	Analyzer   *llm.ConversationAnalyzer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// TicketListFilter describes staff inbox filters.
type TicketListFilter = repository.TicketFilter

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	processor := deps.Processor
	if processor == nil {
		processor = triage.NewProcessor(nil)
	}
	store := deps.Corpus
	if store == nil {
		store = corpus.NewStore(nil)
	}
	return &TriageService{
		tickets:    deps.TicketRepo,
		corpus:     store,
		processor:  processor,
		analyzer:   deps.Analyzer,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Reply returns the assistant's next chat message.
func (s *TriageService) Reply(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	conversation := domain.FormatConversation(messages)
	if conversation == "" {
		return "", apperrors.NewValidationError("conversation must contain at least one message", nil)
	}
	reply, err := s.analyzer.ChatReply(ctx, conversation)
	if err != nil {
		return "", fmt.Errorf("generate chat reply: %w", err)
	}
	return reply, nil
}

// Analyze runs only the triage core on caller-supplied fields against the
// current corpus snapshot. Nothing is persisted.
func (s *TriageService) Analyze(_ context.Context, in triage.Input) (domain.AnalysisResult, error) {
	snapshot := s.corpus.Snapshot()
	result, err := s.processor.Process(in, snapshot.Tickets())
	s.record(result, err)
	return result, err
}

// Submit extracts fields from the conversation, triages it and stores the
// ticket. A failed triage is stored as a placeholder needing review; only
// storage failures are returned as errors.
func (s *TriageService) Submit(ctx context.Context, messages []domain.ChatMessage) (*domain.TriagedTicket, error) {
	conversation := domain.FormatConversation(messages)
	if conversation == "" {
		return nil, apperrors.NewValidationError("conversation must contain at least one message", nil)
	}

	in := triage.Input{Conversation: conversation}
	extraction, err := s.analyzer.Extract(ctx, conversation)
	if err != nil {
		s.logger.Warn("conversation extraction failed", zap.Error(err))
	} else {
		in.Issue = extraction.Issue
		in.Summary = extraction.Summary
		in.Sentiment = string(extraction.Sentiment)
		in.ProposedSolution = extraction.ProposedSolution
	}

	snapshot := s.corpus.Snapshot()
	result, triageErr := s.processor.Process(in, snapshot.Tickets())
	s.record(result, triageErr)

	ticket := &domain.TriagedTicket{
		ExternalKey:  generateTicketKey(),
		Conversation: messages,
		Analysis:     result,
		Status:       domain.TicketStatusTriaged,
	}
	if triageErr != nil {
		reason := fmt.Sprintf("%s: %v", triage.KindOf(triageErr), triageErr)
		ticket.Status = domain.TicketStatusNeedsReview
		ticket.FailureReason = &reason
		s.logger.Warn("triage failed; stored placeholder",
			zap.String("ticket_key", ticket.ExternalKey),
			zap.String("kind", string(triage.KindOf(triageErr))),
			zap.Error(triageErr))
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("store triaged ticket: %w", err)
	}

	s.logger.Info("ticket triaged",
		zap.String("ticket_key", ticket.ExternalKey),
		zap.String("priority", string(result.Priority)),
		zap.String("team", string(result.Team)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("corpus_size", snapshot.Len()))

	payload := events.TicketTriagedPayload{
		Status:     ticket.Status,
		Priority:   result.Priority,
		Team:       result.Team,
		Confidence: result.Confidence,
		Issue:      result.Issue,
		Summary:    result.Summary,
	}
	if ticket.FailureReason != nil {
		payload.Failure = *ticket.FailureReason
	}
	s.publishEvent(ctx, events.NewEvent(events.EventTicketTriaged, ticket.ExternalKey, payload))
	return ticket, nil
}

// Get returns a stored ticket by key.
func (s *TriageService) Get(ctx context.Context, key string) (*domain.TriagedTicket, error) {
	ticket, err := s.tickets.GetByExternalKey(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"key": key})
		}
		return nil, err
	}
	return ticket, nil
}

// List returns stored tickets matching filter.
func (s *TriageService) List(ctx context.Context, filter TicketListFilter) ([]domain.TriagedTicket, error) {
	return s.tickets.List(ctx, filter)
}

// Draft writes a customer email for a stored ticket.
func (s *TriageService) Draft(ctx context.Context, key string) (string, error) {
	ticket, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	draft, err := s.analyzer.EmailDraft(ctx, ticket.ExternalKey, ticket.Analysis)
	if err != nil {
		return "", fmt.Errorf("generate email draft: %w", err)
	}
	return draft, nil
}

// CorpusStats describes the active corpus.
func (s *TriageService) CorpusStats() corpus.Stats {
	return s.corpus.Snapshot().Stats()
}

func (s *TriageService) record(result domain.AnalysisResult, err error) {
	if err != nil {
		s.metrics.RecordTriageFailure(string(triage.KindOf(err)))
		return
	}
	s.metrics.RecordTriage(result)
}

func (s *TriageService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_key", event.TicketKey),
			zap.Error(err))
	}
}

func generateTicketKey() string {
	return "TICKET-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
