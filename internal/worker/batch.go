package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/llm"
	"github.com/spec-kit/triage-service/internal/triage"
)

// BatchItem is one conversation to triage.
type BatchItem struct {
	Name         string
	Conversation string
}

// BatchResult is the outcome for one item. Err is empty on success.
type BatchResult struct {
	Name   string                `json:"name"`
	Result domain.AnalysisResult `json:"result"`
	Kind   triage.ErrorKind      `json:"error_kind,omitempty"`
	Err    string                `json:"error,omitempty"`
}

// BatchTriager triages many conversations concurrently with a bounded pool.
type BatchTriager struct {
	analyzer  *llm.ConversationAnalyzer
	processor *triage.Processor
	workers   int
	logger    *zap.Logger
}

// NewBatchTriager builds a batch triager; workers <= 0 means 4.
func NewBatchTriager(analyzer *llm.ConversationAnalyzer, processor *triage.Processor, workers int, logger *zap.Logger) *BatchTriager {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchTriager{analyzer: analyzer, processor: processor, workers: workers, logger: logger}
}

// TriageOne extracts fields from conversation and runs the core.
func (b *BatchTriager) TriageOne(ctx context.Context, conversation string, corpus []domain.HistoricalTicket) (domain.AnalysisResult, error) {
	in := triage.Input{Conversation: conversation}
	if strings.TrimSpace(conversation) != "" {
		extraction, err := b.analyzer.Extract(ctx, conversation)
		if err != nil {
			b.logger.Warn("conversation extraction failed", zap.Error(err))
		} else {
			in.Issue = extraction.Issue
			in.Summary = extraction.Summary
			in.Sentiment = string(extraction.Sentiment)
			in.ProposedSolution = extraction.ProposedSolution
		}
	}
	return b.processor.Process(in, corpus)
}

// Run triages items and returns results in input order. A failing item does
// not stop the batch; only context cancellation does.
func (b *BatchTriager) Run(ctx context.Context, items []BatchItem, corpus []domain.HistoricalTicket) ([]BatchResult, error) {
	results := make([]BatchResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := b.TriageOne(gctx, item.Conversation, corpus)
			results[i] = BatchResult{Name: item.Name, Result: result}
			if err != nil {
				results[i].Kind = triage.KindOf(err)
				results[i].Err = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// LoadDir reads every .txt file in dir as one conversation, sorted by name.
func LoadDir(dir string) ([]BatchItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read batch dir: %w", err)
	}
	var items []BatchItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		items = append(items, BatchItem{Name: entry.Name(), Conversation: string(raw)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
