package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/sentiment-analyzer/internal/config"
	"github.com/kirillkom/sentiment-analyzer/internal/core/ports"
	"github.com/kirillkom/sentiment-analyzer/internal/core/usecase"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/export"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/extractor/document"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/repository/memory"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/resilience"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/storage/localfs"
)

type Options struct {
	Service  string
	Logger   *slog.Logger
	Observer ports.PipelineObserver
	// ConnectQueue dials NATS and wires the submit use case. Commands that
	// never touch the queue leave it off.
	ConnectQueue bool
}

// App is the composition root shared by the CLI and the worker.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Store      *memory.Store
	Classifier ports.SentimentClassifier
	Storage    ports.ObjectStorage
	Queue      ports.JobQueue

	AnalyzeUC ports.DocumentAnalyzer
	HistoryUC ports.AnalysisHistory
	FilterUC  ports.AnalysisFilterService
	ExportUC  ports.AnalysisExportService
	SubmitUC  ports.DocumentSubmitter
	ProcessUC ports.JobProcessor

	closers []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = ports.NopObserver{}
	}
	app := &App{Config: cfg, Logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	storage, err := localfs.New(cfg.Store.StoragePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	app.Storage = storage

	policy := resiliencePolicy(cfg.Resilience)
	if err := policy.Validate(); err != nil {
		app.Close()
		return nil, fmt.Errorf("resilience policy: %w", err)
	}
	executor := resilience.NewExecutor(policy, logger)
	client := ollama.New(ollama.Config{
		BaseURL:     cfg.Ollama.URL,
		Model:       cfg.Ollama.Model,
		Timeout:     cfg.Ollama.Timeout,
		Temperature: cfg.Ollama.Temperature,
		MaxTokens:   cfg.Ollama.MaxTokens,
		RateLimit:   cfg.Ollama.RateLimitRPS,
		RateBurst:   cfg.Ollama.RateLimitBurst,
	}, executor, logger)
	app.Classifier = ollama.NewClassifier(client)

	extractor := document.NewExtractor(cfg.Pipeline.MaxFileSize, logger)
	parser := usecase.NewResponseParser(logger)
	serializer := export.NewSerializer(cfg.Pipeline.MaxExportLimit)

	analyzeUC := usecase.NewAnalyzeDocumentUseCase(extractor, app.Classifier, store, parser, observer, logger, cfg.Pipeline.DefaultLanguage)
	app.AnalyzeUC = analyzeUC
	app.HistoryUC = usecase.NewHistoryUseCase(store, logger)
	app.FilterUC = usecase.NewFilterUseCase(store, logger)
	app.ExportUC = usecase.NewExportAnalysesUseCase(store, serializer, observer, logger)
	app.ProcessUC = usecase.NewProcessJobUseCase(storage, analyzeUC, cfg.Pipeline.MaxFileSize, logger)

	if opts.ConnectQueue {
		queue, err := nats.NewWithOptions(cfg.NATS.URL, cfg.NATS.Subject, nats.Options{
			ClientName:         opts.Service,
			QueueGroup:         cfg.NATS.QueueGroup,
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.closers = append(app.closers, queue.Close)
		app.Queue = queue
		app.SubmitUC = usecase.NewSubmitDocumentUseCase(storage, queue, logger)
	}

	return app, nil
}

func (a *App) openStore(ctx context.Context) (*memory.Store, error) {
	switch a.Config.Store.Backend {
	case config.BackendPostgres:
		db, err := postgres.OpenDB(a.Config.Store.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, closeDB(db))
		store, err := postgres.NewStore(ctx, db, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return store, nil
	default:
		return memory.NewStore(), nil
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

func resiliencePolicy(c config.ResilienceConfig) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:        c.RetryMaxAttempts,
		RetryInitialBackoff:     c.RetryInitialBackoff,
		RetryMaxBackoff:         c.RetryMaxBackoff,
		RetryMultiplier:         c.RetryMultiplier,
		BreakerEnabled:          c.BreakerEnabled,
		BreakerMinRequests:      uint32(max(c.BreakerMinRequests, 0)),
		BreakerFailureRatio:     c.BreakerFailureRatio,
		BreakerOpenTimeout:      c.BreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: uint32(max(c.BreakerHalfOpenMaxCalls, 0)),
	}
}
