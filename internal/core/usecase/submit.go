package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/core/ports"
)

// SubmitDocumentUseCase stores a document and queues it for the worker.
type SubmitDocumentUseCase struct {
	storage ports.ObjectStorage
	queue   ports.JobQueue
	logger  *slog.Logger
}

func NewSubmitDocumentUseCase(storage ports.ObjectStorage, queue ports.JobQueue, logger *slog.Logger) *SubmitDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitDocumentUseCase{storage: storage, queue: queue, logger: logger}
}

func (uc *SubmitDocumentUseCase) Submit(ctx context.Context, cmd domain.SubmitCommand) (*domain.AnalysisJob, error) {
	switch {
	case cmd.Body == nil:
		return nil, domain.NewValidationError("document", "file is empty")
	case strings.TrimSpace(cmd.ClientName) == "":
		return nil, domain.NewValidationError("client_name", "client name is required")
	case strings.TrimSpace(cmd.DocumentID) == "":
		return nil, domain.NewValidationError("document_id", "document id is required")
	case strings.TrimSpace(cmd.Channel) == "":
		return nil, domain.NewValidationError("channel", "channel is required")
	}

	id := uuid.NewString()
	job := domain.AnalysisJob{
		JobID:       id,
		StorageKey:  fmt.Sprintf("%s_%s", id, sanitizeFilename(cmd.Filename)),
		Filename:    cmd.Filename,
		ClientName:  strings.TrimSpace(cmd.ClientName),
		DocumentID:  strings.TrimSpace(cmd.DocumentID),
		Channel:     strings.TrimSpace(cmd.Channel),
		SubmittedAt: time.Now().UTC(),
	}

	if err := uc.storage.Save(ctx, job.StorageKey, cmd.Body); err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "save document", err)
	}
	if err := uc.queue.PublishAnalysisJob(ctx, job); err != nil {
		if delErr := uc.storage.Delete(ctx, job.StorageKey); delErr != nil {
			uc.logger.Warn("orphaned_document", "storage_key", job.StorageKey, "error", delErr)
		}
		return nil, fmt.Errorf("publish analysis job: %w", err)
	}

	uc.logger.Info("analysis_job_submitted",
		"job_id", job.JobID,
		"client_name", job.ClientName,
		"document_id", job.DocumentID,
		"channel", job.Channel,
	)
	return &job, nil
}

// ProcessJobUseCase loads a queued document and runs the analysis pipeline on it.
type ProcessJobUseCase struct {
	storage  ports.ObjectStorage
	analyzer ports.DocumentAnalyzer
	maxSize  int64
	logger   *slog.Logger
}

func NewProcessJobUseCase(storage ports.ObjectStorage, analyzer ports.DocumentAnalyzer, maxSize int64, logger *slog.Logger) *ProcessJobUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessJobUseCase{storage: storage, analyzer: analyzer, maxSize: maxSize, logger: logger}
}

// ProcessJob runs one queued job. Jobs are delivered at most once, so the stored
// document is removed whether the analysis succeeds or fails.
func (uc *ProcessJobUseCase) ProcessJob(ctx context.Context, job domain.AnalysisJob) (*domain.AnalyzeResult, error) {
	defer uc.release(ctx, job)

	data, err := uc.load(ctx, job.StorageKey)
	if err != nil {
		return nil, err
	}

	result, err := uc.analyzer.Execute(ctx, domain.AnalyzeCommand{
		Document:   data,
		ClientName: job.ClientName,
		DocumentID: job.DocumentID,
		Channel:    job.Channel,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze job %s: %w", job.JobID, err)
	}

	uc.logger.Info("analysis_job_processed", "job_id", job.JobID, "record_id", result.Record.ID)
	return result, nil
}

func (uc *ProcessJobUseCase) release(ctx context.Context, job domain.AnalysisJob) {
	if err := uc.storage.Delete(context.WithoutCancel(ctx), job.StorageKey); err != nil {
		uc.logger.Warn("stored_document_cleanup_failed", "job_id", job.JobID, "storage_key", job.StorageKey, "error", err)
	}
}

// load reads at most one byte past maxSize so oversized documents still fail size validation.
func (uc *ProcessJobUseCase) load(ctx context.Context, key string) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidDocument, "open stored document", err)
	}
	defer rc.Close()

	reader := io.Reader(rc)
	if uc.maxSize > 0 {
		reader = io.LimitReader(rc, uc.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidDocument, "read stored document", err)
	}
	return data, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
