package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/triage-service/internal/domain"
)

type memoryTriagedTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.TriagedTicket
	now     func() time.Time
}

// NewMemoryTriagedTicketRepository returns a process-local repository used
// when no database is configured and in tests.
func NewMemoryTriagedTicketRepository() TriagedTicketRepository {
	return &memoryTriagedTicketRepository{
		tickets: make(map[string]domain.TriagedTicket),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryTriagedTicketRepository) Create(_ context.Context, ticket *domain.TriagedTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.ExternalKey]; exists {
		return ErrConflict
	}
	now := r.now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ExternalKey] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTriagedTicketRepository) Update(_ context.Context, ticket *domain.TriagedTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tickets[ticket.ExternalKey]
	if !ok {
		return ErrNotFound
	}
	ticket.ID = existing.ID
	ticket.CreatedAt = existing.CreatedAt
	ticket.Conversation = existing.Conversation
	ticket.UpdatedAt = r.now()
	r.tickets[ticket.ExternalKey] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTriagedTicketRepository) GetByExternalKey(_ context.Context, key string) (*domain.TriagedTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *memoryTriagedTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.TriagedTicket, error) {
	r.mu.RLock()
	matched := make([]domain.TriagedTicket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if matchesFilter(ticket, filter) {
			matched = append(matched, cloneTicket(ticket))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ExternalKey < matched[j].ExternalKey
	})

	limit, offset := pageBounds(filter)
	if offset >= len(matched) {
		return []domain.TriagedTicket{}, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

func matchesFilter(ticket domain.TriagedTicket, filter TicketFilter) bool {
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !slices.Contains(filter.Priorities, ticket.Analysis.Priority) {
		return false
	}
	if len(filter.Teams) > 0 && !slices.Contains(filter.Teams, ticket.Analysis.Team) {
		return false
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(ticket.Analysis.Issue), term) &&
			!strings.Contains(strings.ToLower(ticket.Analysis.Summary), term) {
			return false
		}
	}
	return true
}

func cloneTicket(t domain.TriagedTicket) domain.TriagedTicket {
	t.Conversation = slices.Clone(t.Conversation)
	t.Analysis.SimilarCases = slices.Clone(t.Analysis.SimilarCases)
	t.Analysis.ActionItems = slices.Clone(t.Analysis.ActionItems)
	if t.FailureReason != nil {
		reason := *t.FailureReason
		t.FailureReason = &reason
	}
	return t
}
