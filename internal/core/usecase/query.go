package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/core/ports"
)

const defaultRecentLimit = 10

type HistoryUseCase struct {
	store  ports.AnalysisStore
	logger *slog.Logger
}

func NewHistoryUseCase(store ports.AnalysisStore, logger *slog.Logger) *HistoryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryUseCase{store: store, logger: logger}
}

func (uc *HistoryUseCase) Execute(ctx context.Context, query domain.HistoryQuery) (*domain.HistoryResult, error) {
	page, stats, err := uc.store.Query(ctx, query.Filter, query.Page.Normalize())
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "list analyses", err)
	}
	return &domain.HistoryResult{Page: page, Statistics: stats}, nil
}

// Recent returns the newest records of one client, or of all clients when clientName is blank.
func (uc *HistoryUseCase) Recent(ctx context.Context, clientName string, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	clientName = strings.TrimSpace(clientName)
	if clientName != "" {
		records, err := uc.store.FindRecentByClient(ctx, clientName, limit)
		if err != nil {
			return nil, domain.WrapError(domain.ErrPersistence, "list recent analyses", err)
		}
		return records, nil
	}

	page, err := uc.store.FindAll(ctx, domain.AnalysisFilter{}, domain.PageRequest{Page: 1, Limit: limit}.Normalize())
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "list recent analyses", err)
	}
	return page.Items, nil
}

func (uc *HistoryUseCase) GetByID(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.AnalysisRecord{}, domain.NewValidationError("id", "analysis id is required")
	}
	record, ok, err := uc.store.FindByID(ctx, id)
	if err != nil {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrPersistence, "get analysis", err)
	}
	if !ok {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrRecordNotFound, "get analysis", fmt.Errorf("no analysis with id %q", id))
	}
	return record, nil
}

type FilterUseCase struct {
	store  ports.AnalysisStore
	logger *slog.Logger
}

func NewFilterUseCase(store ports.AnalysisStore, logger *slog.Logger) *FilterUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterUseCase{store: store, logger: logger}
}

func (uc *FilterUseCase) Execute(ctx context.Context, query domain.FilterQuery) (*domain.FilterResult, error) {
	filter := query.Filter.Sanitize()
	page, stats, err := uc.store.Query(ctx, filter, query.Page.Normalize())
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "filter analyses", err)
	}

	uc.logger.Debug("analyses_filtered", "total_matches", stats.Total, "page", page.Page, "limit", page.Limit)
	return &domain.FilterResult{
		Page:          page,
		AppliedFilter: filter,
		Summary: domain.FilterSummary{
			TotalMatches: stats.Total,
			SentimentDistribution: map[domain.SentimentCategory]int{
				domain.SentimentPositive: stats.PositiveCount,
				domain.SentimentNeutral:  stats.NeutralCount,
				domain.SentimentNegative: stats.NegativeCount,
			},
			ChannelDistribution: stats.ChannelCounts,
			AverageConfidence:   stats.AverageConfidence,
		},
	}, nil
}

// Options reports the filter values present in the store.
func (uc *FilterUseCase) Options(ctx context.Context) (*domain.FilterOptions, error) {
	records, _, err := uc.store.Snapshot(ctx, domain.AnalysisFilter{}, 0)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "load filter options", err)
	}

	opts := &domain.FilterOptions{
		Clients:    []string{},
		Channels:   []string{},
		Sentiments: domain.SentimentCategories(),
	}
	if len(records) == 0 {
		return opts, nil
	}

	clients := make(map[string]struct{})
	channels := make(map[string]struct{})
	earliest, latest := records[0].CreatedAt, records[0].CreatedAt
	opts.MinConfidence, opts.MaxConfidence = records[0].Confidence, records[0].Confidence
	for _, r := range records {
		clients[r.ClientName] = struct{}{}
		channels[r.Channel] = struct{}{}
		if r.CreatedAt.Before(earliest) {
			earliest = r.CreatedAt
		}
		if r.CreatedAt.After(latest) {
			latest = r.CreatedAt
		}
		opts.MinConfidence = min(opts.MinConfidence, r.Confidence)
		opts.MaxConfidence = max(opts.MaxConfidence, r.Confidence)
	}
	opts.Clients = sortedKeys(clients)
	opts.Channels = sortedKeys(channels)
	opts.EarliestAt = &earliest
	opts.LatestAt = &latest
	return opts, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
