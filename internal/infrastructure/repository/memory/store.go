package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

const defaultRecentLimit = 10

// Journal receives every mutation before it is applied in memory. A journal error aborts
// the mutation, so memory never holds state the journal rejected.
type Journal interface {
	Upsert(ctx context.Context, record domain.AnalysisRecord) error
	Delete(ctx context.Context, id string) error
	Truncate(ctx context.Context) error
}

type Option func(*Store)

func WithJournal(j Journal) Option {
	return func(s *Store) { s.journal = j }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the in-memory record engine. All reads return copies.
type Store struct {
	mu      sync.RWMutex
	records []domain.AnalysisRecord
	index   map[string]int
	journal Journal
	now     func() time.Time
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the contents without touching the journal. Used to restore journaled state.
func (s *Store) Load(records []domain.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]domain.AnalysisRecord, 0, len(records))
	s.index = make(map[string]int, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("load record %s: %w", r.ID, err)
		}
		s.put(r)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, record domain.AnalysisRecord) (domain.AnalysisRecord, error) {
	if err := record.Validate(); err != nil {
		return domain.AnalysisRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.Upsert(ctx, record); err != nil {
			return domain.AnalysisRecord{}, err
		}
	}
	s.put(record)
	return record, nil
}

func (s *Store) FindByID(_ context.Context, id string) (domain.AnalysisRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.AnalysisRecord{}, false, nil
	}
	return s.records[i], true, nil
}

func (s *Store) FindAll(_ context.Context, filter domain.AnalysisFilter, page domain.PageRequest) (domain.Page, error) {
	return paginate(s.filtered(filter), page), nil
}

func (s *Store) Statistics(_ context.Context, filter domain.AnalysisFilter) (domain.Statistics, error) {
	return domain.ComputeStatistics(s.filtered(filter)), nil
}

// Query computes the page and the statistics from one filtered copy, so both describe
// the same set of records.
func (s *Store) Query(_ context.Context, filter domain.AnalysisFilter, page domain.PageRequest) (domain.Page, domain.Statistics, error) {
	matches := s.filtered(filter)
	// Statistics break channel ties by insertion order, so compute them before sorting.
	stats := domain.ComputeStatistics(matches)
	return paginate(matches, page), stats, nil
}

// Snapshot returns the matches newest first, taken under a single read lock. A positive
// limit caps the result; the returned total counts every match.
func (s *Store) Snapshot(_ context.Context, filter domain.AnalysisFilter, limit int) ([]domain.AnalysisRecord, int, error) {
	matches := s.filtered(filter)
	sortRecords(matches, domain.SortByCreatedAt, domain.SortDesc)
	total := len(matches)
	if limit > 0 && total > limit {
		matches = matches[:limit:limit]
	}
	return matches, total, nil
}

// paginate sorts matches in place and slices out the requested page.
func paginate(matches []domain.AnalysisRecord, page domain.PageRequest) domain.Page {
	req := page.Normalize()
	sortRecords(matches, req.SortBy, req.SortOrder)

	total := len(matches)
	start := min(req.Offset(), total)
	end := min(start+req.Limit, total)
	return domain.NewPage(matches[start:end:end], total, req)
}

func (s *Store) FindRecentByClient(_ context.Context, clientName string, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	s.mu.RLock()
	out := make([]domain.AnalysisRecord, 0)
	for _, r := range s.records {
		if r.ClientName == clientName {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sortRecords(out, domain.SortByCreatedAt, domain.SortDesc)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}
	if s.journal != nil {
		if err := s.journal.Delete(ctx, id); err != nil {
			return false, err
		}
	}

	s.records = slices.Delete(s.records, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].ID] = j
	}
	return true, nil
}

func (s *Store) Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.AnalysisRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.AnalysisRecord{}, false, nil
	}
	updated, err := patch.Apply(s.records[i], s.now())
	if err != nil {
		return domain.AnalysisRecord{}, true, err
	}
	if s.journal != nil {
		if err := s.journal.Upsert(ctx, updated); err != nil {
			return domain.AnalysisRecord{}, true, err
		}
	}
	s.records[i] = updated
	return updated, true, nil
}

func (s *Store) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.Truncate(ctx); err != nil {
			return err
		}
	}
	s.records = nil
	s.index = make(map[string]int)
	return nil
}

// put must be called with the write lock held.
func (s *Store) put(record domain.AnalysisRecord) {
	if i, ok := s.index[record.ID]; ok {
		s.records[i] = record
		return
	}
	s.index[record.ID] = len(s.records)
	s.records = append(s.records, record)
}

func (s *Store) filtered(filter domain.AnalysisFilter) []domain.AnalysisRecord {
	filter = filter.Sanitize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AnalysisRecord, 0, len(s.records))
	for _, r := range s.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortRecords(records []domain.AnalysisRecord, field domain.SortField, order domain.SortOrder) {
	compare := comparator(field)
	slices.SortStableFunc(records, func(a, b domain.AnalysisRecord) int {
		if order == domain.SortAsc {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

func comparator(field domain.SortField) func(a, b domain.AnalysisRecord) int {
	switch field {
	case domain.SortByUpdatedAt:
		return func(a, b domain.AnalysisRecord) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case domain.SortByClientName:
		return func(a, b domain.AnalysisRecord) int {
			return strings.Compare(strings.ToLower(a.ClientName), strings.ToLower(b.ClientName))
		}
	case domain.SortByDocumentID:
		return func(a, b domain.AnalysisRecord) int { return strings.Compare(a.DocumentID, b.DocumentID) }
	case domain.SortByChannel:
		return func(a, b domain.AnalysisRecord) int {
			return strings.Compare(strings.ToLower(a.Channel), strings.ToLower(b.Channel))
		}
	case domain.SortBySentiment:
		return func(a, b domain.AnalysisRecord) int { return strings.Compare(string(a.Sentiment), string(b.Sentiment)) }
	case domain.SortByConfidence:
		return func(a, b domain.AnalysisRecord) int { return cmp.Compare(a.Confidence, b.Confidence) }
	default:
		return func(a, b domain.AnalysisRecord) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}
