package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/config"
	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

func TestNewWiresMemoryBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.Store.StoragePath = filepath.Join(t.TempDir(), "storage")

	app, err := New(context.Background(), cfg, Options{
		Service: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Store == nil || app.AnalyzeUC == nil || app.HistoryUC == nil || app.FilterUC == nil || app.ExportUC == nil || app.ProcessUC == nil {
		t.Fatalf("expected every use case to be wired: %+v", app)
	}
	if app.Queue != nil || app.SubmitUC != nil {
		t.Fatalf("queue must stay disconnected unless requested")
	}

	page, err := app.HistoryUC.Execute(context.Background(), domain.HistoryQuery{})
	if err != nil || page.Page.Total != 0 {
		t.Fatalf("expected empty history, got %+v err=%v", page, err)
	}
}

func TestNewRejectsInvalidResiliencePolicy(t *testing.T) {
	cfg := config.Defaults()
	cfg.Store.StoragePath = t.TempDir()
	cfg.Resilience.BreakerFailureRatio = 3

	if _, err := New(context.Background(), cfg, Options{}); err == nil {
		t.Fatalf("expected invalid policy to fail")
	}
}

func TestResiliencePolicyMapping(t *testing.T) {
	policy := resiliencePolicy(config.ResilienceConfig{
		RetryMaxAttempts:        5,
		RetryInitialBackoff:     time.Second,
		BreakerMinRequests:      -3,
		BreakerHalfOpenMaxCalls: 4,
		BreakerEnabled:          true,
	})
	if policy.RetryMaxAttempts != 5 || policy.RetryInitialBackoff != time.Second || !policy.BreakerEnabled {
		t.Fatalf("unexpected policy: %+v", policy)
	}
	if policy.BreakerMinRequests != 0 || policy.BreakerHalfOpenMaxCalls != 4 {
		t.Fatalf("expected negative counts to clamp to zero: %+v", policy)
	}
}
