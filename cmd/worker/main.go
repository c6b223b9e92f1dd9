package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/bootstrap"
	"github.com/kirillkom/sentiment-analyzer/internal/config"
	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/observability/logging"
	"github.com/kirillkom/sentiment-analyzer/internal/observability/metrics"
)

const serviceName = "sentiment-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewLogger(serviceName, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(serviceName, registry)
	workerMetrics := metrics.NewWorkerMetrics(serviceName, registry)

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Service:      serviceName,
		Logger:       logger,
		Observer:     pipelineMetrics,
		ConnectQueue: true,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if n, err := app.Store.Count(ctx); err == nil {
		pipelineMetrics.SetStoreRecords(n)
	}

	metricsServer := metrics.NewServer(":"+cfg.Worker.MetricsPort, registry, app.Classifier.IsReady)
	go func() {
		logger.Info("metrics_server_started", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATS.Subject, "queue_group", cfg.NATS.QueueGroup)
	err = app.Queue.SubscribeAnalysisJobs(ctx, func(handlerCtx context.Context, job domain.AnalysisJob) error {
		if !job.SubmittedAt.IsZero() {
			workerMetrics.ObserveQueueLag(time.Since(job.SubmittedAt))
		}
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.Worker.JobTimeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartJob()
		_, err := app.ProcessUC.ProcessJob(processCtx, job)
		workerMetrics.FinishJob(time.Since(start), err)

		if n, countErr := app.Store.Count(handlerCtx); countErr == nil {
			pipelineMetrics.SetStoreRecords(n)
		}
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker_stopped")
}
