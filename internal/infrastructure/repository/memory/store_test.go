package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newRecord(t *testing.T, id, client, channel string, sentiment domain.SentimentCategory, confidence float64, offset time.Duration) domain.AnalysisRecord {
	t.Helper()
	metrics, err := domain.NewTextMetrics(3, 1, 1, 3, 75, time.Millisecond, "es")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	rec, err := domain.NewAnalysisRecord(domain.AnalysisRecordParams{
		ID:         id,
		ClientName: client,
		DocumentID: "doc-" + id,
		Content:    "texto de prueba",
		Sentiment:  sentiment,
		Emotions:   domain.MustEmotionVector(0.5, 0.1, 0.1, 0.1, 0.1, 0.1),
		Metrics:    metrics,
		Confidence: confidence,
		Channel:    channel,
		CreatedAt:  baseTime.Add(offset),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return rec
}

func seed(t *testing.T, s *Store, records ...domain.AnalysisRecord) {
	t.Helper()
	for _, r := range records {
		if _, err := s.Save(context.Background(), r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}
}

func TestStoreSaveIsUpsertAndFindByIDReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	rec := newRecord(t, "a", "ACME", "email", domain.SentimentPositive, 0.9, 0)
	seed(t, s, rec)

	rec.Confidence = 0.2
	seed(t, s, rec)

	n, _ := s.Count(ctx)
	if n != 1 {
		t.Fatalf("expected upsert to keep one record, got %d", n)
	}
	got, ok, err := s.FindByID(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("expected record, ok=%v err=%v", ok, err)
	}
	if got.Confidence != 0.2 {
		t.Fatalf("expected upserted confidence, got %v", got.Confidence)
	}

	got.ClientName = "mutated"
	again, _, _ := s.FindByID(ctx, "a")
	if again.ClientName != "ACME" {
		t.Fatalf("store state leaked through returned copy")
	}

	if _, ok, err := s.FindByID(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected absent record without error, ok=%v err=%v", ok, err)
	}
}

func TestStoreRejectsInvalidRecord(t *testing.T) {
	s := NewStore()
	_, err := s.Save(context.Background(), domain.AnalysisRecord{ID: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoreFindAllPagesCoverTotal(t *testing.T) {
	s := NewStore()
	for i := 0; i < 47; i++ {
		seed(t, s, newRecord(t, fmt.Sprintf("r%02d", i), "ACME", "email", domain.SentimentNeutral, 0.5, time.Duration(i)*time.Minute))
	}

	for _, limit := range []int{1, 7, 20, 47, 100} {
		first, err := s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{Page: 1, Limit: limit})
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		wantPages := (47 + limit - 1) / limit
		if first.TotalPages != wantPages {
			t.Fatalf("limit %d: expected %d pages, got %d", limit, wantPages, first.TotalPages)
		}

		seen := 0
		for p := 1; p <= first.TotalPages; p++ {
			page, err := s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{Page: p, Limit: limit})
			if err != nil {
				t.Fatalf("find all page %d: %v", p, err)
			}
			seen += len(page.Items)
		}
		if seen != first.Total || seen != 47 {
			t.Fatalf("limit %d: pages cover %d records, total %d", limit, seen, first.Total)
		}
	}

	beyond, _ := s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{Page: 9, Limit: 10})
	if len(beyond.Items) != 0 || beyond.Total != 47 {
		t.Fatalf("expected empty page past the end, got %d items total=%d", len(beyond.Items), beyond.Total)
	}
}

func TestStoreFindAllClampsPagination(t *testing.T) {
	s := NewStore()
	seed(t, s, newRecord(t, "a", "ACME", "email", domain.SentimentPositive, 0.9, 0))

	page, err := s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{Page: 0, Limit: 500})
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if page.Limit != 100 || page.Page != 1 {
		t.Fatalf("expected page=1 limit=100, got page=%d limit=%d", page.Page, page.Limit)
	}
}

func TestStoreFindAllDefaultSortIsNewestFirst(t *testing.T) {
	s := NewStore()
	seed(t, s,
		newRecord(t, "old", "ACME", "email", domain.SentimentPositive, 0.9, 0),
		newRecord(t, "new", "ACME", "email", domain.SentimentPositive, 0.3, 2*time.Hour),
		newRecord(t, "mid", "ACME", "email", domain.SentimentPositive, 0.6, time.Hour),
	)

	page, _ := s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{})
	if ids := recordIDs(page.Items); ids != "new,mid,old" {
		t.Fatalf("unexpected default order %s", ids)
	}

	page, _ = s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{SortBy: domain.SortByConfidence, SortOrder: domain.SortAsc})
	if ids := recordIDs(page.Items); ids != "new,mid,old" {
		t.Fatalf("unexpected confidence order %s", ids)
	}

	page, _ = s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{SortBy: "nonsense"})
	if ids := recordIDs(page.Items); ids != "new,mid,old" {
		t.Fatalf("expected unknown sort field to fall back to created_at, got %s", ids)
	}
}

func TestStoreFilterIsConjunction(t *testing.T) {
	s := NewStore()
	seed(t, s,
		newRecord(t, "1", "Banco ACME", "Email", domain.SentimentNegative, 0.9, 0),
		newRecord(t, "2", "Banco ACME", "chat", domain.SentimentNegative, 0.9, time.Hour),
		newRecord(t, "3", "Other", "email", domain.SentimentNegative, 0.9, 2*time.Hour),
		newRecord(t, "4", "acme corp", "email", domain.SentimentPositive, 0.9, 3*time.Hour),
		newRecord(t, "5", "ACME", "email", domain.SentimentNegative, 0.4, 4*time.Hour),
	)

	minConfidence := 0.5
	filter := domain.AnalysisFilter{
		ClientName:    "acme",
		Channel:       "EMAIL",
		Sentiment:     domain.SentimentNegative,
		MinConfidence: &minConfidence,
	}
	page, err := s.FindAll(context.Background(), filter, domain.PageRequest{})
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if ids := recordIDs(page.Items); ids != "1" {
		t.Fatalf("expected only record 1, got %s", ids)
	}

	bogus := 7.0
	page, _ = s.FindAll(context.Background(), domain.AnalysisFilter{MaxConfidence: &bogus, Sentiment: "mixed"}, domain.PageRequest{})
	if page.Total != 5 {
		t.Fatalf("expected invalid criteria to be ignored, got total %d", page.Total)
	}

	from := baseTime.Add(time.Hour)
	to := baseTime.Add(3 * time.Hour)
	page, _ = s.FindAll(context.Background(), domain.AnalysisFilter{CreatedFrom: &from, CreatedTo: &to}, domain.PageRequest{})
	if ids := recordIDs(page.Items); ids != "4,3,2" {
		t.Fatalf("expected inclusive date range, got %s", ids)
	}
}

func TestStoreStatistics(t *testing.T) {
	s := NewStore()
	seed(t, s,
		newRecord(t, "1", "ACME", "email", domain.SentimentPositive, 0.9, 0),
		newRecord(t, "2", "ACME", "chat", domain.SentimentNegative, 0.7, time.Minute),
		newRecord(t, "3", "ACME", "chat", domain.SentimentNeutral, 0.5, 2*time.Minute),
		newRecord(t, "4", "ACME", "email", domain.SentimentPositive, 0.3, 3*time.Minute),
	)

	stats, err := s.Statistics(context.Background(), domain.AnalysisFilter{})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 4 || stats.PositiveCount != 2 || stats.NegativeCount != 1 || stats.NeutralCount != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if want := (0.9 + 0.7 + 0.5 + 0.3) / 4; stats.AverageConfidence != want {
		t.Fatalf("expected mean %v, got %v", want, stats.AverageConfidence)
	}
	if stats.MostCommonChannel != "email" {
		t.Fatalf("expected first-seen channel to win the tie, got %q", stats.MostCommonChannel)
	}

	empty, _ := s.Statistics(context.Background(), domain.AnalysisFilter{ClientName: "nobody"})
	if empty.Total != 0 || empty.AverageConfidence != 0 {
		t.Fatalf("unexpected empty statistics: %+v", empty)
	}
}

func TestStoreFindRecentByClientUsesExactMatch(t *testing.T) {
	s := NewStore()
	for i := 0; i < 12; i++ {
		seed(t, s, newRecord(t, fmt.Sprintf("a%02d", i), "ACME", "email", domain.SentimentNeutral, 0.5, time.Duration(i)*time.Minute))
	}
	seed(t, s, newRecord(t, "b", "ACME Corp", "email", domain.SentimentNeutral, 0.5, time.Hour))

	recent, err := s.FindRecentByClient(context.Background(), "ACME", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("expected default limit 10, got %d", len(recent))
	}
	if recent[0].ID != "a11" {
		t.Fatalf("expected newest first, got %s", recent[0].ID)
	}
	for _, r := range recent {
		if r.ClientName != "ACME" {
			t.Fatalf("unexpected client %q", r.ClientName)
		}
	}
}

func TestStoreUpdateAndDelete(t *testing.T) {
	s := NewStore(WithClock(func() time.Time { return baseTime }))
	ctx := context.Background()
	seed(t, s, newRecord(t, "a", "ACME", "email", domain.SentimentPositive, 0.9, 0), newRecord(t, "b", "ACME", "chat", domain.SentimentPositive, 0.9, time.Minute))

	channel := "phone"
	updated, ok, err := s.Update(ctx, "a", domain.AnalysisPatch{Channel: &channel})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated.Channel != "phone" || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, ok, err := s.Update(ctx, "missing", domain.AnalysisPatch{Channel: &channel}); ok || err != nil {
		t.Fatalf("expected missing update to report false, ok=%v err=%v", ok, err)
	}

	deleted, err := s.DeleteByID(ctx, "a")
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	if deleted, _ := s.DeleteByID(ctx, "a"); deleted {
		t.Fatalf("expected second delete to report false")
	}
	if got, ok, _ := s.FindByID(ctx, "b"); !ok || got.Channel != "chat" {
		t.Fatalf("expected remaining record to stay addressable")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

type journalFake struct {
	upserts int
	deletes int
	err     error
}

func (j *journalFake) Upsert(context.Context, domain.AnalysisRecord) error {
	if j.err != nil {
		return j.err
	}
	j.upserts++
	return nil
}

func (j *journalFake) Delete(context.Context, string) error {
	if j.err != nil {
		return j.err
	}
	j.deletes++
	return nil
}

func (j *journalFake) Truncate(context.Context) error { return j.err }

func TestStoreJournalFailureLeavesMemoryUntouched(t *testing.T) {
	journal := &journalFake{}
	s := NewStore(WithJournal(journal))
	ctx := context.Background()
	seed(t, s, newRecord(t, "a", "ACME", "email", domain.SentimentPositive, 0.9, 0))
	if journal.upserts != 1 {
		t.Fatalf("expected journal upsert, got %d", journal.upserts)
	}

	journal.err = errors.New("db down")
	if _, err := s.Save(ctx, newRecord(t, "b", "ACME", "email", domain.SentimentPositive, 0.9, 0)); err == nil {
		t.Fatalf("expected journal error")
	}
	if deleted, err := s.DeleteByID(ctx, "a"); err == nil || deleted {
		t.Fatalf("expected delete to fail, deleted=%v err=%v", deleted, err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Fatalf("expected memory unchanged, got %d records", n)
	}
}

func TestStoreConcurrentSaves(t *testing.T) {
	s := NewStore()
	records := make([]domain.AnalysisRecord, 50)
	for i := range records {
		records[i] = newRecord(t, fmt.Sprintf("c%02d", i), "ACME", "email", domain.SentimentNeutral, 0.5, time.Duration(i)*time.Second)
	}

	var wg sync.WaitGroup
	for _, r := range records {
		wg.Add(1)
		go func(r domain.AnalysisRecord) {
			defer wg.Done()
			_, _ = s.Save(context.Background(), r)
			_, _ = s.FindAll(context.Background(), domain.AnalysisFilter{}, domain.PageRequest{})
		}(r)
	}
	wg.Wait()

	if n, _ := s.Count(context.Background()); n != 50 {
		t.Fatalf("expected 50 records, got %d", n)
	}
}

func recordIDs(records []domain.AnalysisRecord) string {
	out := ""
	for i, r := range records {
		if i > 0 {
			out += ","
		}
		out += r.ID
	}
	return out
}
