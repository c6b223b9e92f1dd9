package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

var createdAt = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func testRecord(t *testing.T, id string, sentiment domain.SentimentCategory) domain.AnalysisRecord {
	t.Helper()
	metrics, err := domain.NewTextMetrics(12, 2, 1, 6, 85.5, 850*time.Millisecond, "es")
	require.NoError(t, err)
	rec, err := domain.NewAnalysisRecord(domain.AnalysisRecordParams{
		ID:         id,
		ClientName: "Acme",
		DocumentID: "doc-" + id,
		Content:    "La transferencia llegó tarde y nadie respondió mis correos.",
		Sentiment:  sentiment,
		Emotions:   domain.MustEmotionVector(0.05, 0.15, 0.6, 0.1, 0.05, 0.05),
		Metrics:    metrics,
		Confidence: 0.87,
		Channel:    "email",
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	return rec
}

type analyzerFake struct {
	got    domain.AnalyzeCommand
	result *domain.AnalyzeResult
	err    error
}

func (f *analyzerFake) Execute(_ context.Context, cmd domain.AnalyzeCommand) (*domain.AnalyzeResult, error) {
	f.got = cmd
	return f.result, f.err
}

type submitterFake struct {
	got  domain.SubmitCommand
	body []byte
	err  error
}

func (f *submitterFake) Submit(_ context.Context, cmd domain.SubmitCommand) (*domain.AnalysisJob, error) {
	f.got = cmd
	body, err := io.ReadAll(cmd.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AnalysisJob{
		JobID:      "job-1",
		StorageKey: "job-1",
		Filename:   cmd.Filename,
		ClientName: cmd.ClientName,
		DocumentID: cmd.DocumentID,
		Channel:    cmd.Channel,
	}, nil
}

type historyFake struct {
	query        domain.HistoryQuery
	result       *domain.HistoryResult
	recentClient string
	recentLimit  int
	recent       []domain.AnalysisRecord
	records      map[string]domain.AnalysisRecord
	err          error
}

func (f *historyFake) Execute(_ context.Context, q domain.HistoryQuery) (*domain.HistoryResult, error) {
	f.query = q
	return f.result, f.err
}

func (f *historyFake) Recent(_ context.Context, client string, limit int) ([]domain.AnalysisRecord, error) {
	f.recentClient = client
	f.recentLimit = limit
	return f.recent, f.err
}

func (f *historyFake) GetByID(_ context.Context, id string) (domain.AnalysisRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrRecordNotFound, "get analysis", io.EOF)
	}
	return rec, nil
}

type filterFake struct {
	query   domain.FilterQuery
	result  *domain.FilterResult
	options *domain.FilterOptions
}

func (f *filterFake) Execute(_ context.Context, q domain.FilterQuery) (*domain.FilterResult, error) {
	f.query = q
	return f.result, nil
}

func (f *filterFake) Options(context.Context) (*domain.FilterOptions, error) {
	return f.options, nil
}

type exportFake struct {
	cmd           domain.ExportCommand
	outcome       *domain.ExportOutcome
	err           error
	previewFilter domain.AnalysisFilter
	previewLimit  int
	preview       *domain.ExportPreview
}

func (f *exportFake) Execute(_ context.Context, cmd domain.ExportCommand) (*domain.ExportOutcome, error) {
	f.cmd = cmd
	return f.outcome, f.err
}

func (f *exportFake) Preview(_ context.Context, filter domain.AnalysisFilter, limit int) (*domain.ExportPreview, error) {
	f.previewFilter = filter
	f.previewLimit = limit
	return f.preview, nil
}

type removerFake struct {
	deleted []string
	known   map[string]bool
}

func (f *removerFake) DeleteByID(_ context.Context, id string) (bool, error) {
	if !f.known[id] {
		return false, nil
	}
	f.deleted = append(f.deleted, id)
	return true, nil
}

type harness struct {
	svc       *Services
	loads     int
	withQueue bool
	released  int
	stderr    bytes.Buffer
}

func newHarness() *harness {
	return &harness{svc: &Services{}}
}

func (h *harness) loader(_ context.Context, withQueue bool) (*Services, func(), error) {
	h.loads++
	h.withQueue = withQueue
	return h.svc, func() { h.released++ }, nil
}

func (h *harness) execute(args ...string) (string, error) {
	root := NewRootCommand("1.2.3", h.loader)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	h.stderr.Reset()
	root.SetErr(&h.stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}
