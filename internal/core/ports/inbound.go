package ports

import (
	"context"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for synchronous document analysis.
type DocumentAnalyzer interface {
	Execute(ctx context.Context, cmd domain.AnalyzeCommand) (*domain.AnalyzeResult, error)
}

// DocumentSubmitter queues a document for asynchronous analysis.
type DocumentSubmitter interface {
	Submit(ctx context.Context, cmd domain.SubmitCommand) (*domain.AnalysisJob, error)
}

// JobProcessor runs one queued analysis job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job domain.AnalysisJob) (*domain.AnalyzeResult, error)
}

// AnalysisHistory is the inbound read model for stored analyses.
type AnalysisHistory interface {
	Execute(ctx context.Context, query domain.HistoryQuery) (*domain.HistoryResult, error)
	Recent(ctx context.Context, clientName string, limit int) ([]domain.AnalysisRecord, error)
	GetByID(ctx context.Context, id string) (domain.AnalysisRecord, error)
}

type AnalysisFilterService interface {
	Execute(ctx context.Context, query domain.FilterQuery) (*domain.FilterResult, error)
	Options(ctx context.Context) (*domain.FilterOptions, error)
}

type AnalysisExportService interface {
	Execute(ctx context.Context, cmd domain.ExportCommand) (*domain.ExportOutcome, error)
	Preview(ctx context.Context, filter domain.AnalysisFilter, limit int) (*domain.ExportPreview, error)
}
