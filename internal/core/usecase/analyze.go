package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/core/ports"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

type AnalyzeDocumentUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.SentimentClassifier
	store      ports.AnalysisStore
	parser     *ResponseParser
	observer   ports.PipelineObserver
	logger     *slog.Logger
	language   string
	now        func() time.Time
}

func NewAnalyzeDocumentUseCase(
	extractor ports.TextExtractor,
	classifier ports.SentimentClassifier,
	store ports.AnalysisStore,
	parser *ResponseParser,
	observer ports.PipelineObserver,
	logger *slog.Logger,
	language string,
) *AnalyzeDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = NewResponseParser(logger)
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	if strings.TrimSpace(language) == "" {
		language = domain.DefaultLanguage
	}
	return &AnalyzeDocumentUseCase{
		extractor:  extractor,
		classifier: classifier,
		store:      store,
		parser:     parser,
		observer:   observer,
		logger:     logger,
		language:   language,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *AnalyzeDocumentUseCase) Execute(ctx context.Context, cmd domain.AnalyzeCommand) (*domain.AnalyzeResult, error) {
	started := time.Now()
	log := uc.logger.With(
		"client_name", cmd.ClientName,
		"document_id", cmd.DocumentID,
		"channel", cmd.Channel,
		"size_bytes", len(cmd.Document),
	)
	log.Info("analysis_started")
	uc.observer.AnalysisStarted()

	result, err := uc.run(ctx, cmd, started)
	if err != nil {
		log.Error("analysis_failed", "error", err, "elapsed_ms", time.Since(started).Milliseconds())
		uc.observer.AnalysisFinished(statusFailed, "", time.Since(started))
		return nil, err
	}

	log.Info("analysis_completed",
		"record_id", result.Record.ID,
		"sentiment", result.Record.Sentiment,
		"confidence", result.Record.Confidence,
		"parse_outcome", result.Outcome,
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)
	uc.observer.AnalysisFinished(statusSuccess, result.Record.Sentiment, result.Elapsed)
	return result, nil
}

func (uc *AnalyzeDocumentUseCase) run(ctx context.Context, cmd domain.AnalyzeCommand, started time.Time) (*domain.AnalyzeResult, error) {
	if err := uc.validate(cmd); err != nil {
		return nil, err
	}

	if !uc.classifier.IsReady(ctx) {
		return nil, domain.WrapError(domain.ErrAnalyzerUnavailable, "check classifier", errors.New("classifier is not ready"))
	}

	text, err := uc.extractText(ctx, cmd.Document)
	if err != nil {
		return nil, err
	}

	parsed, err := uc.classify(ctx, cmd, text)
	if err != nil {
		return nil, err
	}

	metrics, err := domain.ComputeTextMetrics(text, time.Since(started), uc.language)
	if err != nil {
		return nil, fmt.Errorf("compute text metrics: %w", err)
	}

	now := uc.now()
	record, err := domain.NewAnalysisRecord(domain.AnalysisRecordParams{
		ID:         uuid.NewString(),
		ClientName: cmd.ClientName,
		DocumentID: cmd.DocumentID,
		Content:    text,
		Sentiment:  parsed.Sentiment,
		Emotions:   parsed.Emotions,
		Metrics:    metrics,
		Confidence: parsed.Confidence,
		Channel:    cmd.Channel,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("build analysis record: %w", err)
	}

	saved, err := uc.store.Save(ctx, record)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "save analysis", err)
	}

	return &domain.AnalyzeResult{
		Record:  saved,
		Elapsed: time.Since(started),
		Outcome: parsed.Outcome,
	}, nil
}

// validate checks caller input in a fixed order; the first failure wins.
func (uc *AnalyzeDocumentUseCase) validate(cmd domain.AnalyzeCommand) error {
	switch {
	case len(cmd.Document) == 0:
		return domain.NewValidationError("document", "file is empty")
	case strings.TrimSpace(cmd.ClientName) == "":
		return domain.NewValidationError("client_name", "client name is required")
	case strings.TrimSpace(cmd.DocumentID) == "":
		return domain.NewValidationError("document_id", "document id is required")
	case strings.TrimSpace(cmd.Channel) == "":
		return domain.NewValidationError("channel", "channel is required")
	}
	if limit := uc.extractor.MaxSize(); int64(len(cmd.Document)) > limit {
		return domain.NewValidationError("document", fmt.Sprintf("file exceeds maximum size of %d bytes", limit))
	}
	return nil
}

func (uc *AnalyzeDocumentUseCase) extractText(ctx context.Context, data []byte) (string, error) {
	if !uc.extractor.IsSupported(data) {
		return "", domain.WrapError(domain.ErrInvalidDocument, "extract text", errors.New("unsupported document format"))
	}
	extracted, err := uc.extractor.Extract(ctx, data, domain.ExtractOptions{Language: uc.language})
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidDocument, "extract text", err)
	}
	text := strings.TrimSpace(extracted.Content)
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyContent, "extract text", errors.New("document contains no text"))
	}
	return text, nil
}

func (uc *AnalyzeDocumentUseCase) classify(ctx context.Context, cmd domain.AnalyzeCommand, text string) (ParseResult, error) {
	raw, err := uc.classifier.Classify(ctx, domain.ClassifyRequest{
		Text:       text,
		ClientName: cmd.ClientName,
		DocumentID: cmd.DocumentID,
		Channel:    cmd.Channel,
	})
	if err != nil {
		return ParseResult{}, domain.WrapError(domain.ErrClassification, "classify text", err)
	}

	parsed := uc.parser.Parse(raw)
	if parsed.Outcome == domain.OutcomeFallback {
		uc.observer.ParserFallback()
	}
	return parsed, nil
}
