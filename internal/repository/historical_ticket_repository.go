package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// HistoricalTicketRepository reads and seeds the resolved-ticket corpus table.
type HistoricalTicketRepository interface {
	ListAll(ctx context.Context) ([]domain.HistoricalTicket, error)
	ReplaceAll(ctx context.Context, tickets []domain.HistoricalTicket) (int64, error)
}

type historicalTicketRepository struct {
	pool *pgxpool.Pool
}

// NewHistoricalTicketRepository returns a Postgres-backed implementation.
func NewHistoricalTicketRepository(pool *pgxpool.Pool) HistoricalTicketRepository {
	return &historicalTicketRepository{pool: pool}
}

// ListAll returns tickets in insertion order so corpus indexes stay stable.
func (r *historicalTicketRepository) ListAll(ctx context.Context) ([]domain.HistoricalTicket, error) {
	const query = `
        SELECT issue, solution, sentiment, priority, resolution_hours, resolution_status, resolved_at
        FROM historical_tickets ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoricalTicket
	for rows.Next() {
		var (
			ticket    domain.HistoricalTicket
			sentiment string
			priority  string
		)
		if err := rows.Scan(
			&ticket.Issue,
			&ticket.Solution,
			&sentiment,
			&priority,
			&ticket.ResolutionHours,
			&ticket.Status,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		ticket.Sentiment = domain.ParseSentiment(sentiment)
		ticket.Priority = domain.ParsePriority(priority)
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// ReplaceAll truncates the table and bulk-loads tickets in one transaction.
func (r *historicalTicketRepository) ReplaceAll(ctx context.Context, tickets []domain.HistoricalTicket) (int64, error) {
	var copied int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE historical_tickets RESTART IDENTITY`); err != nil {
			return fmt.Errorf("truncate historical_tickets: %w", err)
		}
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"historical_tickets"},
			[]string{"issue", "solution", "sentiment", "priority", "resolution_hours", "resolution_status", "resolved_at"},
			pgx.CopyFromSlice(len(tickets), func(i int) ([]any, error) {
				t := tickets[i]
				return []any{t.Issue, t.Solution, string(t.Sentiment), string(t.Priority), t.ResolutionHours, t.Status, t.ResolvedAt}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy historical_tickets: %w", err)
		}
		copied = n
		return nil
	})
	return copied, err
}
