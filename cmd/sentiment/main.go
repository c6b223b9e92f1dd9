package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/sentiment-analyzer/internal/adapters/cli"
	"github.com/kirillkom/sentiment-analyzer/internal/bootstrap"
	"github.com/kirillkom/sentiment-analyzer/internal/config"
	"github.com/kirillkom/sentiment-analyzer/internal/observability/logging"
)

const serviceName = "sentiment-cli"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// Command output owns stdout.
	logger := logging.NewLoggerTo(os.Stderr, serviceName, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := func(ctx context.Context, withQueue bool) (*cli.Services, func(), error) {
		app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
			Service:      serviceName,
			Logger:       logger,
			ConnectQueue: withQueue,
		})
		if err != nil {
			return nil, nil, err
		}
		return &cli.Services{
			Analyzer:  app.AnalyzeUC,
			Submitter: app.SubmitUC,
			History:   app.HistoryUC,
			Filter:    app.FilterUC,
			Export:    app.ExportUC,
			Records:   app.Store,
			Ephemeral: cfg.Store.Backend == config.BackendMemory,
		}, app.Close, nil
	}

	root := cli.NewRootCommand(version, loader)
	// cobra's Print helpers default to stderr.
	root.SetOut(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
