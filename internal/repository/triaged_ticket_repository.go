package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TicketFilter captures staff inbox search parameters.
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.Priority
	Teams       []domain.Team
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// DefaultListLimit applies when a filter carries no limit.
const DefaultListLimit = 20

// TriagedTicketRepository persists submitted conversations with their analysis.
type TriagedTicketRepository interface {
	Create(ctx context.Context, ticket *domain.TriagedTicket) error
	Update(ctx context.Context, ticket *domain.TriagedTicket) error
	GetByExternalKey(ctx context.Context, key string) (*domain.TriagedTicket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TriagedTicket, error)
}

type triagedTicketRepository struct {
	pool *pgxpool.Pool
}

// NewTriagedTicketRepository returns a Postgres-backed implementation.
func NewTriagedTicketRepository(pool *pgxpool.Pool) TriagedTicketRepository {
	return &triagedTicketRepository{pool: pool}
}

const triagedColumns = `id, external_key, conversation, summary, extracted_issue, suggested_solution,
        priority, team, sentiment, estimated_resolution_time, confidence_score, similar_cases,
        action_items, status, failure_reason, created_at, updated_at`

func (r *triagedTicketRepository) Create(ctx context.Context, ticket *domain.TriagedTicket) error {
	const query = `
        INSERT INTO triaged_tickets (external_key, conversation, summary, extracted_issue, suggested_solution,
            priority, team, sentiment, estimated_resolution_time, confidence_score, similar_cases,
            action_items, status, failure_reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	a := ticket.Analysis
	err := r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		nonNilMessages(ticket.Conversation),
		a.Summary,
		a.Issue,
		a.Solution,
		string(a.Priority),
		string(a.Team),
		a.Sentiment,
		a.EstimatedTime,
		a.Confidence,
		nonNilCases(a.SimilarCases),
		nonNilStrings(a.ActionItems),
		string(ticket.Status),
		ticket.FailureReason,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return uniqueViolation(err)
}

func (r *triagedTicketRepository) Update(ctx context.Context, ticket *domain.TriagedTicket) error {
	const query = `
        UPDATE triaged_tickets SET summary=$1, extracted_issue=$2, suggested_solution=$3, priority=$4,
            team=$5, sentiment=$6, estimated_resolution_time=$7, confidence_score=$8, similar_cases=$9,
            action_items=$10, status=$11, failure_reason=$12, updated_at=NOW()
        WHERE external_key=$13
        RETURNING updated_at`
	a := ticket.Analysis
	err := r.pool.QueryRow(ctx, query,
		a.Summary,
		a.Issue,
		a.Solution,
		string(a.Priority),
		string(a.Team),
		a.Sentiment,
		a.EstimatedTime,
		a.Confidence,
		nonNilCases(a.SimilarCases),
		nonNilStrings(a.ActionItems),
		string(ticket.Status),
		ticket.FailureReason,
		ticket.ExternalKey,
	).Scan(&ticket.UpdatedAt)
	return notFound(err)
}

func (r *triagedTicketRepository) GetByExternalKey(ctx context.Context, key string) (*domain.TriagedTicket, error) {
	query := `SELECT ` + triagedColumns + ` FROM triaged_tickets WHERE external_key=$1`
	rows, err := r.pool.Query(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTriagedTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	return &tickets[0], nil
}

func (r *triagedTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TriagedTicket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	in := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			args = append(args, v)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
	}
	in("status", toStrings(filter.Statuses))
	in("priority", toStrings(filter.Priorities))
	in("team", toStrings(filter.Teams))

	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(extracted_issue) LIKE %s OR LOWER(summary) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := pageBounds(filter)
	query := fmt.Sprintf(`SELECT %s FROM triaged_tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		triagedColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTriagedTickets(rows)
}

func scanTriagedTickets(rows pgx.Rows) ([]domain.TriagedTicket, error) {
	var result []domain.TriagedTicket
	for rows.Next() {
		var (
			ticket   domain.TriagedTicket
			priority string
			team     string
			status   string
		)
		a := &ticket.Analysis
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.Conversation,
			&a.Summary,
			&a.Issue,
			&a.Solution,
			&priority,
			&team,
			&a.Sentiment,
			&a.EstimatedTime,
			&a.Confidence,
			&a.SimilarCases,
			&a.ActionItems,
			&status,
			&ticket.FailureReason,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Priority = domain.ParsePriority(priority)
		if parsed, ok := domain.ParseTeam(team); ok {
			a.Team = parsed
		} else {
			a.Team = domain.Team(team)
		}
		ticket.Status = domain.TicketStatus(status)
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func pageBounds(filter TicketFilter) (limit, offset int) {
	limit = filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset = filter.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func nonNilMessages(v []domain.ChatMessage) []domain.ChatMessage {
	if v == nil {
		return []domain.ChatMessage{}
	}
	return v
}

func nonNilCases(v []domain.SimilarCase) []domain.SimilarCase {
	if v == nil {
		return []domain.SimilarCase{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
