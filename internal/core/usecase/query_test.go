package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/repository/memory"
)

var seedTime = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func seedRecord(t *testing.T, store *memory.Store, id, client, channel string, sentiment domain.SentimentCategory, confidence float64, offset time.Duration) domain.AnalysisRecord {
	t.Helper()
	metrics, err := domain.ComputeTextMetrics("Texto de prueba.", time.Millisecond, "es")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	rec, err := domain.NewAnalysisRecord(domain.AnalysisRecordParams{
		ID:         id,
		ClientName: client,
		DocumentID: "doc-" + id,
		Content:    "Texto de prueba.",
		Sentiment:  sentiment,
		Emotions:   domain.MustEmotionVector(0.2, 0.16, 0.16, 0.16, 0.16, 0.16),
		Metrics:    metrics,
		Confidence: confidence,
		Channel:    channel,
		CreatedAt:  seedTime.Add(offset),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	return rec
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	seedRecord(t, store, "1", "ACME", "email", domain.SentimentPositive, 0.9, 0)
	seedRecord(t, store, "2", "ACME", "chat", domain.SentimentNegative, 0.4, time.Hour)
	seedRecord(t, store, "3", "Globex", "chat", domain.SentimentNeutral, 0.7, 2*time.Hour)
	seedRecord(t, store, "4", "Globex", "phone", domain.SentimentPositive, 0.6, 3*time.Hour)
	return store
}

func TestHistoryExecuteReturnsPageAndStatistics(t *testing.T) {
	uc := NewHistoryUseCase(seededStore(t), discardLogger())

	res, err := uc.Execute(context.Background(), domain.HistoryQuery{Page: domain.PageRequest{Page: 0, Limit: 2}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Page.Page != 1 || res.Page.Limit != 2 || res.Page.TotalPages != 2 || len(res.Page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", res.Page)
	}
	if res.Page.Items[0].ID != "4" {
		t.Fatalf("expected newest first, got %s", res.Page.Items[0].ID)
	}
	if res.Statistics.Total != 4 || res.Statistics.PositiveCount != 2 || res.Statistics.MostCommonChannel != "chat" {
		t.Fatalf("unexpected statistics: %+v", res.Statistics)
	}
}

func TestHistoryRecent(t *testing.T) {
	uc := NewHistoryUseCase(seededStore(t), discardLogger())

	all, err := uc.Recent(context.Background(), "", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 3 || all[0].ID != "4" {
		t.Fatalf("unexpected recent across clients: %d first=%s", len(all), all[0].ID)
	}

	acme, err := uc.Recent(context.Background(), "ACME", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(acme) != 2 || acme[0].ID != "2" {
		t.Fatalf("unexpected recent for client: %+v", acme)
	}
}

func TestHistoryGetByID(t *testing.T) {
	uc := NewHistoryUseCase(seededStore(t), discardLogger())

	if _, err := uc.GetByID(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := uc.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	rec, err := uc.GetByID(context.Background(), "3")
	if err != nil || rec.ClientName != "Globex" {
		t.Fatalf("unexpected record %+v err=%v", rec, err)
	}
}

func TestFilterExecuteSummarizesMatches(t *testing.T) {
	uc := NewFilterUseCase(seededStore(t), discardLogger())
	minConfidence := 0.5
	invalid := -1.0

	res, err := uc.Execute(context.Background(), domain.FilterQuery{
		Filter: domain.AnalysisFilter{ClientName: "glob", MinConfidence: &minConfidence, MaxConfidence: &invalid},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Summary.TotalMatches != 2 || len(res.Page.Items) != 2 {
		t.Fatalf("unexpected matches: %+v", res.Summary)
	}
	if res.AppliedFilter.MaxConfidence != nil {
		t.Fatalf("expected invalid max confidence to be dropped from applied filter")
	}
	if res.Summary.SentimentDistribution[domain.SentimentPositive] != 1 || res.Summary.SentimentDistribution[domain.SentimentNeutral] != 1 {
		t.Fatalf("unexpected sentiment distribution: %v", res.Summary.SentimentDistribution)
	}
	if res.Summary.ChannelDistribution["phone"] != 1 || res.Summary.ChannelDistribution["chat"] != 1 {
		t.Fatalf("unexpected channel distribution: %v", res.Summary.ChannelDistribution)
	}
	if res.Summary.AverageConfidence != (0.7+0.6)/2 {
		t.Fatalf("unexpected average confidence %v", res.Summary.AverageConfidence)
	}
}

func TestFilterOptions(t *testing.T) {
	uc := NewFilterUseCase(seededStore(t), discardLogger())
	opts, err := uc.Options(context.Background())
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if fmt.Sprint(opts.Clients) != "[ACME Globex]" || fmt.Sprint(opts.Channels) != "[chat email phone]" {
		t.Fatalf("unexpected clients/channels: %v %v", opts.Clients, opts.Channels)
	}
	if opts.MinConfidence != 0.4 || opts.MaxConfidence != 0.9 {
		t.Fatalf("unexpected confidence range: %v..%v", opts.MinConfidence, opts.MaxConfidence)
	}
	if !opts.EarliestAt.Equal(seedTime) || !opts.LatestAt.Equal(seedTime.Add(3*time.Hour)) {
		t.Fatalf("unexpected date range: %v..%v", opts.EarliestAt, opts.LatestAt)
	}

	empty, err := NewFilterUseCase(memory.NewStore(), discardLogger()).Options(context.Background())
	if err != nil || len(empty.Clients) != 0 || empty.EarliestAt != nil {
		t.Fatalf("unexpected options for empty store: %+v err=%v", empty, err)
	}
}

// writingStore saves one newer record after every FindAll and before every Statistics
// call, standing in for a concurrent writer between two reads.
type writingStore struct {
	*memory.Store
	t      *testing.T
	writes int
}

func (s *writingStore) write() {
	s.writes++
	seedRecord(s.t, s.Store, fmt.Sprintf("late%02d", s.writes), "ACME", "email", domain.SentimentNeutral, 0.5, 24*time.Hour+time.Duration(s.writes)*time.Second)
}

func (s *writingStore) FindAll(ctx context.Context, filter domain.AnalysisFilter, page domain.PageRequest) (domain.Page, error) {
	p, err := s.Store.FindAll(ctx, filter, page)
	s.write()
	return p, err
}

func (s *writingStore) Statistics(ctx context.Context, filter domain.AnalysisFilter) (domain.Statistics, error) {
	s.write()
	return s.Store.Statistics(ctx, filter)
}

func TestHistoryPageAndStatisticsShareOneRead(t *testing.T) {
	store := &writingStore{Store: seededStore(t), t: t}
	uc := NewHistoryUseCase(store, discardLogger())

	res, err := uc.Execute(context.Background(), domain.HistoryQuery{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Page.Total != res.Statistics.Total || res.Page.Total != 4 {
		t.Fatalf("page total %d and statistics total %d must describe the same records", res.Page.Total, res.Statistics.Total)
	}

	filtered, err := NewFilterUseCase(store, discardLogger()).Execute(context.Background(), domain.FilterQuery{})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if filtered.Page.Total != filtered.Summary.TotalMatches {
		t.Fatalf("page total %d and summary total %d disagree", filtered.Page.Total, filtered.Summary.TotalMatches)
	}
}

func TestSnapshotCapsNewestFirst(t *testing.T) {
	store := memory.NewStore()
	for i := 0; i < 230; i++ {
		seedRecord(t, store, fmt.Sprintf("r%03d", i), "ACME", "email", domain.SentimentNeutral, 0.5, time.Duration(i)*time.Second)
	}

	all, total, err := store.Snapshot(context.Background(), domain.AnalysisFilter{}, 0)
	if err != nil || len(all) != 230 || total != 230 {
		t.Fatalf("expected all 230 records, got %d total=%d err=%v", len(all), total, err)
	}
	capped, total, err := store.Snapshot(context.Background(), domain.AnalysisFilter{}, 150)
	if err != nil || len(capped) != 150 || total != 230 || capped[0].ID != "r229" {
		t.Fatalf("unexpected capped result: %d total=%d err=%v", len(capped), total, err)
	}
}
