package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	IsSupported(data []byte) bool
	Extract(ctx context.Context, data []byte, opts domain.ExtractOptions) (domain.ExtractedText, error)
	MaxSize() int64
}

// SentimentClassifier returns the raw classification response for a text.
type SentimentClassifier interface {
	IsReady(ctx context.Context) bool
	Classify(ctx context.Context, req domain.ClassifyRequest) (string, error)
}

// AnalysisStore owns the canonical analysis records. Reads return copies.
type AnalysisStore interface {
	Save(ctx context.Context, record domain.AnalysisRecord) (domain.AnalysisRecord, error)
	FindByID(ctx context.Context, id string) (domain.AnalysisRecord, bool, error)
	FindAll(ctx context.Context, filter domain.AnalysisFilter, page domain.PageRequest) (domain.Page, error)
	Statistics(ctx context.Context, filter domain.AnalysisFilter) (domain.Statistics, error)
	// Query returns one page and the statistics of every match from a single read.
	Query(ctx context.Context, filter domain.AnalysisFilter, page domain.PageRequest) (domain.Page, domain.Statistics, error)
	// Snapshot returns the matches newest first from a single read. A positive limit caps
	// the result; the int is the total number of matches.
	Snapshot(ctx context.Context, filter domain.AnalysisFilter, limit int) ([]domain.AnalysisRecord, int, error)
	FindRecentByClient(ctx context.Context, clientName string, limit int) ([]domain.AnalysisRecord, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.AnalysisRecord, bool, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// AnalysisExporter serializes records for download.
type AnalysisExporter interface {
	Export(records []domain.AnalysisRecord, opts domain.ExportOptions) (*domain.ExportResult, error)
	ValidateOptions(opts domain.ExportOptions) error
	SupportedFormats() []domain.ExportFormat
	MaxRecords() int
}

// ObjectStorage stores submitted documents until a worker picks them up.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// JobQueue publishes and consumes asynchronous analysis jobs.
type JobQueue interface {
	PublishAnalysisJob(ctx context.Context, job domain.AnalysisJob) error
	SubscribeAnalysisJobs(ctx context.Context, handler func(context.Context, domain.AnalysisJob) error) error
}

// PipelineObserver receives pipeline events for metrics.
type PipelineObserver interface {
	AnalysisStarted()
	AnalysisFinished(status string, sentiment domain.SentimentCategory, elapsed time.Duration)
	ParserFallback()
	ExportFinished(format domain.ExportFormat, status string)
}

type NopObserver struct{}

func (NopObserver) AnalysisStarted()                                                 {}
func (NopObserver) AnalysisFinished(string, domain.SentimentCategory, time.Duration) {}
func (NopObserver) ParserFallback()                                                  {}
func (NopObserver) ExportFinished(domain.ExportFormat, string)                       {}
