package corpus

import (
	"context"
	"fmt"

	"github.com/spec-kit/triage-service/internal/domain"
)

// Source loads a complete corpus.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Corpus, error)
}

// TicketLister lists every historical ticket, e.g. from a database table.
type TicketLister interface {
	ListAll(ctx context.Context) ([]domain.HistoricalTicket, error)
}

type listerSource struct {
	name   string
	lister TicketLister
}

// NewListerSource adapts a TicketLister into a Source.
func NewListerSource(name string, lister TicketLister) Source {
	return &listerSource{name: name, lister: lister}
}

func (s *listerSource) Name() string {
	return s.name
}

func (s *listerSource) Load(ctx context.Context) (*Corpus, error) {
	tickets, err := s.lister.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list historical tickets: %w", err)
	}
	return New(s.name, tickets), nil
}
