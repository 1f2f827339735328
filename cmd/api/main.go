package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/triage-service/internal/api/http"
	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/llm"
	"github.com/spec-kit/triage-service/internal/notify"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var ticketRepo repository.TriagedTicketRepository
	if pg.Enabled() {
		ticketRepo = repository.NewTriagedTicketRepository(pg.PoolHandle())
	} else {
		logger.Warn("postgres not configured; triaged tickets are kept in memory")
		ticketRepo = repository.NewMemoryTriagedTicketRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	if redis.Enabled() {
		publisher := events.NewRedisPublisher(redis.Client, cfg.Redis.EventsChannel, cfg.Redis.RecentLimit)
		dispatcher.Subscribe(events.AllEvents, publisher.Handle)
	}

	store := corpus.NewStore(nil)
	source := corpusSource(cfg.Corpus, pg, logger)
	reloader := corpus.NewReloader(store, source, logger, func(previous, next *corpus.Corpus) {
		metrics.SetCorpusSize(next.Len())
		metrics.RecordCorpusReload(nil)
		event := events.NewEvent(events.EventCorpusReloaded, "", events.CorpusReloadedPayload{
			Source:   next.Source(),
			Tickets:  next.Len(),
			Previous: previous.Len(),
		})
		if err := dispatcher.Publish(context.Background(), event); err != nil {
			logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	})
	reloader.OnFailure(metrics.RecordCorpusReload)
	if _, err := reloader.Reload(ctx); err != nil {
		logger.Warn("starting with an empty corpus", zap.Error(err))
	}
	if err := reloader.Start(cfg.Corpus.ReloadCron); err != nil {
		logger.Fatal("failed to schedule corpus reload", zap.Error(err))
	}
	defer reloader.Stop()

	processor, err := newProcessor(cfg.Triage)
	if err != nil {
		logger.Fatal("failed to load triage rules", zap.Error(err))
	}

	generator := llm.NewFallbackGenerator(llm.NewAnthropicGenerator(llm.AnthropicConfig{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: int64(cfg.LLM.MaxTokens),
		Timeout:   cfg.LLM.Timeout(),
	}, logger), logger)

	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo: ticketRepo,
		Corpus:     store,
		Processor:  processor,
		Analyzer:   llm.NewConversationAnalyzer(generator),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		TicketRepo: ticketRepo,
		Sender:     notify.NewSMTPMailer(cfg.Notification, logger),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	notifier := worker.NewNotificationWorker(notificationService.HandleTicketTriaged, logger, 2, 128)
	notifier.Register(dispatcher)
	notifier.Start()
	defer notifier.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, store),
		Triage:         handlers.NewTriageHandler(triageService),
		Tickets:        handlers.NewTicketsHandler(triageService, notificationService),
		Corpus:         handlers.NewCorpusHandler(triageService, reloader),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func corpusSource(cfg config.CorpusConfig, pg *persistence.Postgres, logger *zap.Logger) corpus.Source {
	if cfg.Source == config.CorpusSourcePostgres {
		if !pg.Enabled() {
			logger.Fatal("corpus source is postgres but POSTGRES_DSN is empty")
		}
		return corpus.NewListerSource("postgres:historical_tickets", repository.NewHistoricalTicketRepository(pg.PoolHandle()))
	}
	return corpus.NewCSVSource(cfg.CSVPath)
}

func newProcessor(cfg config.TriageConfig) (*triage.Processor, error) {
	rules := triage.DefaultRules()
	if cfg.RulesPath != "" {
		loaded, err := triage.LoadRulesFile(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	opts := []triage.ProcessorOption{
		triage.WithTopK(cfg.TopK),
		triage.WithMinSimilarity(cfg.MinSimilarity),
	}
	if cfg.Bigrams {
		opts = append(opts, triage.WithRanker(triage.NewRanker(triage.NewVectorizer(triage.WithBigrams()))))
	}
	return triage.NewProcessor(rules, opts...), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
