package corpus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func TestCorpus_NilIsEmpty(t *testing.T) {
	var c *Corpus
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Issues())
	_, ok := c.At(0)
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Tickets)
}

func TestCorpus_CopiesInput(t *testing.T) {
	tickets := []domain.HistoricalTicket{{Issue: "a"}, {Issue: "b"}}
	c := New("mem", tickets)
	tickets[0].Issue = "changed"

	assert.Equal(t, []string{"a", "b"}, c.Issues())
	_, ok := c.At(2)
	assert.False(t, ok)
}

func TestCorpus_Stats(t *testing.T) {
	c := New("mem", []domain.HistoricalTicket{
		{Issue: "a", Priority: domain.PriorityHigh, Sentiment: domain.SentimentNegative, ResolutionHours: ptr(2.0)},
		{Issue: "b", Priority: domain.PriorityHigh, Sentiment: domain.SentimentNeutral, ResolutionHours: ptr(4.0)},
		{Issue: "c", Priority: domain.PriorityLow, Sentiment: domain.SentimentNeutral},
	})
	stats := c.Stats()
	assert.Equal(t, 3, stats.Tickets)
	assert.Equal(t, 2, stats.ByPriority[domain.PriorityHigh])
	assert.Equal(t, 2, stats.BySentiment[domain.SentimentNeutral])
	assert.Equal(t, 2, stats.WithResolutionHours)
	assert.Equal(t, 3.0, stats.AvgResolutionHours)
}

type fakeSource struct {
	mu      sync.Mutex
	corpora []*Corpus
	err     error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(context.Context) (*Corpus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	next := f.corpora[0]
	f.corpora = f.corpora[1:]
	return next, nil
}

func TestReloader_SwapsAndKeepsOldOnFailure(t *testing.T) {
	store := NewStore(nil)
	first := New("fake", []domain.HistoricalTicket{{Issue: "one"}})
	source := &fakeSource{corpora: []*Corpus{first}}

	var hooked int
	reloader := NewReloader(store, source, nil, func(previous, next *Corpus) {
		hooked++
		assert.Zero(t, previous.Len())
		assert.Equal(t, 1, next.Len())
	})

	var failures []error
	reloader.OnFailure(func(err error) { failures = append(failures, err) })

	snapshot := store.Snapshot()
	stats, err := reloader.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Tickets)
	assert.Equal(t, 1, hooked)
	assert.Same(t, first, store.Snapshot())
	assert.Zero(t, snapshot.Len(), "earlier snapshot is unaffected by the swap")

	source.err = errors.New("disk gone")
	_, err = reloader.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, first, store.Snapshot())
	assert.Equal(t, 1, hooked)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], source.err)
}

func TestReloader_NoSource(t *testing.T) {
	_, err := NewReloader(NewStore(nil), nil, nil).Reload(context.Background())
	require.ErrorIs(t, err, ErrNoSource)
}

func TestReloader_Start(t *testing.T) {
	reloader := NewReloader(NewStore(nil), &fakeSource{}, nil)
	require.NoError(t, reloader.Start(""))
	require.Error(t, reloader.Start("not a schedule"))

	require.NoError(t, reloader.Start("0 3 * * *"))
	require.Error(t, reloader.Start("0 4 * * *"))
	reloader.Stop()
	reloader.Stop()
}

func TestListerSource(t *testing.T) {
	lister := listerFunc(func(context.Context) ([]domain.HistoricalTicket, error) {
		return []domain.HistoricalTicket{{Issue: "db row"}}, nil
	})
	c, err := NewListerSource("postgres", lister).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.Source())
	assert.Equal(t, []string{"db row"}, c.Issues())
}

type listerFunc func(context.Context) ([]domain.HistoricalTicket, error)

func (f listerFunc) ListAll(ctx context.Context) ([]domain.HistoricalTicket, error) { return f(ctx) }
