package nats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"
)

func TestJobCodecRoundTrip(t *testing.T) {
	job := domain.AnalysisJob{
		JobID:       "j-1",
		StorageKey:  "j-1_carta.pdf",
		Filename:    "carta.pdf",
		ClientName:  "ACME",
		DocumentID:  "DOC-1",
		Channel:     "email",
		SubmittedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	payload, err := encodeJob(job)
	if err != nil {
		t.Fatalf("encodeJob() error = %v", err)
	}
	if !strings.Contains(string(payload), `"storage_key":"j-1_carta.pdf"`) {
		t.Fatalf("unexpected wire format: %s", payload)
	}
	got, err := decodeJob(payload)
	if err != nil {
		t.Fatalf("decodeJob() error = %v", err)
	}
	if !got.SubmittedAt.Equal(job.SubmittedAt) {
		t.Fatalf("submitted_at changed: %v", got.SubmittedAt)
	}
	got.SubmittedAt = job.SubmittedAt
	if got != job {
		t.Fatalf("expected %+v, got %+v", job, got)
	}
}

func TestDecodeJobRejectsInvalidPayloads(t *testing.T) {
	for _, raw := range []string{"doc-123", `{"job_id":"j"}`, `{"storage_key":"k"}`} {
		if _, err := decodeJob([]byte(raw)); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestClassifyPublishError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want resilience.ErrorClassification
	}{
		{name: "closed connection", err: fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed), want: resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{name: "no servers", err: nats.ErrNoServers, want: resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{name: "open circuit", err: gobreaker.ErrOpenState, want: resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{name: "deadline", err: context.DeadlineExceeded, want: resilience.ErrorClassification{}},
		{name: "max payload", err: fmt.Errorf("nats publish: %w", nats.ErrMaxPayload), want: resilience.ErrorClassification{}},
		{name: "bad subject", err: fmt.Errorf("nats publish: %w", nats.ErrBadSubject), want: resilience.ErrorClassification{}},
		{name: "unknown", err: errors.New("boom"), want: resilience.ErrorClassification{RecordFailure: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyPublishError(tc.err); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRejectedJobsDoNotTripBreaker(t *testing.T) {
	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:        3,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	attempts := 0
	for i := 0; i < 5; i++ {
		err := exec.Execute(context.Background(), operationPublish, func(context.Context) error {
			attempts++
			return fmt.Errorf("nats publish: %w", nats.ErrMaxPayload)
		}, classifyPublishError)
		if !errors.Is(err, nats.ErrMaxPayload) {
			t.Fatalf("call %d: expected max payload error, got %v", i, err)
		}
		if err := publishError(err); domain.IsKind(err, domain.ErrTemporary) {
			t.Fatalf("call %d: rejected job must not be reported as temporary", i)
		}
	}
	if attempts != 5 {
		t.Fatalf("expected one attempt per call, got %d", attempts)
	}
	if state := exec.BreakerState(operationPublish); state != "closed" {
		t.Fatalf("expected closed breaker, got %s", state)
	}
}

func TestPublishError(t *testing.T) {
	if err := publishError(nats.ErrNoServers); !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if err := publishError(gobreaker.ErrOpenState); !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected open circuit to be temporary, got %v", err)
	}
	if err := publishError(nats.ErrBadSubject); err != nats.ErrBadSubject {
		t.Fatalf("expected rejected job error untouched, got %v", err)
	}
	permanent := errors.New("boom")
	if err := publishError(permanent); err != permanent {
		t.Fatalf("expected permanent error untouched, got %v", err)
	}
}
