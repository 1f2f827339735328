package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/cli"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/llm"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCfg := cfg.Logger
	logCfg.Level = "warn"
	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connecting postgres: %w", err)
	}
	defer pg.Close()

	var historical repository.HistoricalTicketRepository
	var source corpus.Source = corpus.NewCSVSource(cfg.Corpus.CSVPath)
	if pg.Enabled() {
		historical = repository.NewHistoricalTicketRepository(pg.PoolHandle())
		if cfg.Corpus.Source == config.CorpusSourcePostgres {
			source = corpus.NewListerSource("postgres:historical_tickets", historical)
		}
	}

	rules := triage.DefaultRules()
	if cfg.Triage.RulesPath != "" {
		if rules, err = triage.LoadRulesFile(cfg.Triage.RulesPath); err != nil {
			return fmt.Errorf("loading triage rules: %w", err)
		}
	}
	opts := []triage.ProcessorOption{
		triage.WithTopK(cfg.Triage.TopK),
		triage.WithMinSimilarity(cfg.Triage.MinSimilarity),
	}
	if cfg.Triage.Bigrams {
		opts = append(opts, triage.WithRanker(triage.NewRanker(triage.NewVectorizer(triage.WithBigrams()))))
	}

	generator := llm.NewFallbackGenerator(llm.NewAnthropicGenerator(llm.AnthropicConfig{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: int64(cfg.LLM.MaxTokens),
		Timeout:   cfg.LLM.Timeout(),
	}, logger), logger)

	app := &cli.App{
		Triager:    worker.NewBatchTriager(llm.NewConversationAnalyzer(generator), triage.NewProcessor(rules, opts...), cfg.Triage.BatchWorkers, logger),
		Corpus:     source,
		CSVPath:    cfg.Corpus.CSVPath,
		Historical: historical,
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL()),
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
