package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

var (
	baseColumns    = []string{"id", "client_name", "document_id", "sentiment", "confidence", "channel", "created_at"}
	emotionColumns = []string{"joy", "sadness", "anger", "fear", "surprise", "disgust"}
	metricColumns  = []string{
		"word_count", "sentence_count", "paragraph_count", "avg_words_per_sentence",
		"readability_score", "processing_time_ms", "language",
	}
)

// Serializer renders analysis records as CSV or JSON documents.
type Serializer struct {
	maxRecords int
	now        func() time.Time
}

func NewSerializer(maxRecords int) *Serializer {
	if maxRecords <= 0 {
		maxRecords = domain.DefaultMaxExportRecords
	}
	return &Serializer{
		maxRecords: maxRecords,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Serializer) SupportedFormats() []domain.ExportFormat {
	return []domain.ExportFormat{domain.ExportCSV, domain.ExportJSON}
}

func (s *Serializer) MaxRecords() int {
	return s.maxRecords
}

func (s *Serializer) ValidateOptions(opts domain.ExportOptions) error {
	switch opts.Format {
	case domain.ExportCSV, domain.ExportJSON:
	default:
		return domain.WrapError(domain.ErrUnsupportedFormat, "validate export options", fmt.Errorf("format %q", opts.Format))
	}
	if _, ok := opts.DateFormat.Layout(); !ok {
		return domain.WrapError(domain.ErrUnsupportedFormat, "validate export options", fmt.Errorf("date format %q", opts.DateFormat))
	}
	return nil
}

func (s *Serializer) Export(records []domain.AnalysisRecord, opts domain.ExportOptions) (*domain.ExportResult, error) {
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyExport, "export analyses", fmt.Errorf("no records provided"))
	}
	if len(records) > s.maxRecords {
		return nil, domain.WrapError(domain.ErrExportLimit, "export analyses",
			fmt.Errorf("%d records exceed the maximum of %d", len(records), s.maxRecords))
	}
	if err := s.ValidateOptions(opts); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case domain.ExportCSV:
		data, err = encodeCSV(records, opts)
	case domain.ExportJSON:
		data, err = encodeJSON(records, opts, now)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s export: %w", opts.Format, err)
	}

	return &domain.ExportResult{
		Data:     data,
		Filename: fmt.Sprintf("sentiment-analysis-%s.%s", now.Format(time.DateOnly), opts.Format.Extension()),
		MimeType: opts.Format.MimeType(),
		Size:     len(data),
	}, nil
}

func encodeCSV(records []domain.AnalysisRecord, opts domain.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{}, baseColumns...)
	if opts.IncludeEmotions {
		header = append(header, emotionColumns...)
	}
	if opts.IncludeMetrics {
		header = append(header, metricColumns...)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.ClientName,
			r.DocumentID,
			string(r.Sentiment),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
			r.Channel,
			opts.DateFormat.Format(r.CreatedAt),
		}
		if opts.IncludeEmotions {
			for _, score := range r.Emotions.Values() {
				row = append(row, strconv.FormatFloat(score, 'f', 3, 64))
			}
		}
		if opts.IncludeMetrics {
			m := r.Metrics
			row = append(row,
				strconv.Itoa(m.WordCount),
				strconv.Itoa(m.SentenceCount),
				strconv.Itoa(m.ParagraphCount),
				strconv.FormatFloat(m.AvgWordsPerSentence, 'f', 2, 64),
				strconv.FormatFloat(m.Readability, 'f', 2, 64),
				strconv.FormatInt(m.ProcessingTime.Milliseconds(), 10),
				m.Language,
			)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type exportInfo struct {
	Timestamp       string              `json:"timestamp"`
	TotalRecords    int                 `json:"total_records"`
	Format          domain.ExportFormat `json:"format"`
	IncludeMetrics  bool                `json:"include_metrics"`
	IncludeEmotions bool                `json:"include_emotions"`
	DateFormat      domain.DateFormat   `json:"date_format,omitempty"`
}

type exportMetrics struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	ParagraphCount      int     `json:"paragraph_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	Readability         float64 `json:"readability_score"`
	ProcessingTimeMS    int64   `json:"processing_time_ms"`
	Language            string  `json:"language"`
}

type exportRecord struct {
	ID         string                   `json:"id"`
	ClientName string                   `json:"client_name"`
	DocumentID string                   `json:"document_id"`
	Sentiment  domain.SentimentCategory `json:"sentiment"`
	Confidence float64                  `json:"confidence"`
	Channel    string                   `json:"channel"`
	CreatedAt  string                   `json:"created_at"`
	UpdatedAt  string                   `json:"updated_at"`
	Emotions   *domain.EmotionVector    `json:"emotions,omitempty"`
	Metrics    *exportMetrics           `json:"metrics,omitempty"`
}

type exportDocument struct {
	ExportInfo exportInfo     `json:"export_info"`
	Data       []exportRecord `json:"data"`
}

func encodeJSON(records []domain.AnalysisRecord, opts domain.ExportOptions, now time.Time) ([]byte, error) {
	doc := exportDocument{
		ExportInfo: exportInfo{
			Timestamp:       now.Format(time.RFC3339Nano),
			TotalRecords:    len(records),
			Format:          opts.Format,
			IncludeMetrics:  opts.IncludeMetrics,
			IncludeEmotions: opts.IncludeEmotions,
			DateFormat:      opts.DateFormat,
		},
		Data: make([]exportRecord, 0, len(records)),
	}

	for _, r := range records {
		item := exportRecord{
			ID:         r.ID,
			ClientName: r.ClientName,
			DocumentID: r.DocumentID,
			Sentiment:  r.Sentiment,
			Confidence: r.Confidence,
			Channel:    r.Channel,
			CreatedAt:  opts.DateFormat.Format(r.CreatedAt),
			UpdatedAt:  opts.DateFormat.Format(r.UpdatedAt),
		}
		if opts.IncludeEmotions {
			emotions := r.Emotions
			item.Emotions = &emotions
		}
		if opts.IncludeMetrics {
			m := r.Metrics
			item.Metrics = &exportMetrics{
				WordCount:           m.WordCount,
				SentenceCount:       m.SentenceCount,
				ParagraphCount:      m.ParagraphCount,
				AvgWordsPerSentence: m.AvgWordsPerSentence,
				Readability:         m.Readability,
				ProcessingTimeMS:    m.ProcessingTime.Milliseconds(),
				Language:            m.Language,
			}
		}
		doc.Data = append(doc.Data, item)
	}

	return json.MarshalIndent(doc, "", "  ")
}
