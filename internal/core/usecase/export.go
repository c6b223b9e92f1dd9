package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/core/ports"
)

const (
	defaultPreviewLimit = 5
	// Applied to the JSON size of a sample record to account for CSV quoting and the envelope.
	exportSizeOverhead  = 1.2
	defaultRecordSize   = 1000
)

type ExportAnalysesUseCase struct {
	store    ports.AnalysisStore
	exporter ports.AnalysisExporter
	observer ports.PipelineObserver
	logger   *slog.Logger
	now      func() time.Time
}

func NewExportAnalysesUseCase(
	store ports.AnalysisStore,
	exporter ports.AnalysisExporter,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *ExportAnalysesUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &ExportAnalysesUseCase{
		store:    store,
		exporter: exporter,
		observer: observer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ExportAnalysesUseCase) Execute(ctx context.Context, cmd domain.ExportCommand) (*domain.ExportOutcome, error) {
	exportedAt := uc.now()
	outcome, err := uc.export(ctx, cmd, exportedAt)
	if err != nil {
		uc.logger.Error("export_failed", "format", cmd.Options.Format, "max_records", cmd.MaxRecords, "error", err)
		uc.observer.ExportFinished(cmd.Options.Format, statusFailed)
		return nil, err
	}

	uc.logger.Info("export_completed",
		"format", cmd.Options.Format,
		"record_count", outcome.ExportedCount,
		"total_available", outcome.TotalAvailable,
		"size_bytes", outcome.Result.Size,
		"filename", outcome.Result.Filename,
	)
	uc.observer.ExportFinished(cmd.Options.Format, statusSuccess)
	return outcome, nil
}

func (uc *ExportAnalysesUseCase) export(ctx context.Context, cmd domain.ExportCommand, exportedAt time.Time) (*domain.ExportOutcome, error) {
	if err := uc.exporter.ValidateOptions(cmd.Options); err != nil {
		return nil, err
	}

	limit := uc.exporter.MaxRecords()
	if cmd.MaxRecords > limit {
		return nil, domain.WrapError(domain.ErrExportLimit, "export analyses",
			fmt.Errorf("maximum export limit is %d records, requested %d", limit, cmd.MaxRecords))
	}
	if cmd.MaxRecords > 0 {
		limit = cmd.MaxRecords
	}

	records, total, err := uc.store.Snapshot(ctx, cmd.Filter, limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "load analyses for export", err)
	}
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyExport, "export analyses", errors.New("no analyses match the requested criteria"))
	}

	result, err := uc.exporter.Export(records, cmd.Options)
	if err != nil {
		return nil, err
	}

	return &domain.ExportOutcome{
		Result:         *result,
		ExportedCount:  len(records),
		TotalAvailable: total,
		ExportedAt:     exportedAt,
	}, nil
}

// Preview returns the newest matching records and a size estimate for exporting all matches.
func (uc *ExportAnalysesUseCase) Preview(ctx context.Context, filter domain.AnalysisFilter, limit int) (*domain.ExportPreview, error) {
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	page, err := uc.store.FindAll(ctx, filter, domain.PageRequest{Page: 1, Limit: limit}.Normalize())
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "preview export", err)
	}

	recordSize := float64(defaultRecordSize)
	if len(page.Items) > 0 {
		if raw, err := json.Marshal(page.Items[0]); err == nil {
			recordSize = float64(len(raw)) * exportSizeOverhead
		}
	}

	return &domain.ExportPreview{
		Sample:        page.Items,
		Total:         page.Total,
		EstimatedSize: formatFileSize(recordSize * float64(page.Total)),
	}, nil
}

func (uc *ExportAnalysesUseCase) SupportedFormats() []domain.ExportFormat {
	return uc.exporter.SupportedFormats()
}

func formatFileSize(bytes float64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := bytes
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, units[unit])
}
