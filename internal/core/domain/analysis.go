package domain

import (
	"math"
	"strings"
	"time"
)

const highConfidenceThreshold = 0.8

// AnalysisRecord is the persisted result of one document analysis.
// Build it with NewAnalysisRecord; records held by a store are always valid.
type AnalysisRecord struct {
	ID         string            `json:"id"`
	ClientName string            `json:"client_name"`
	DocumentID string            `json:"document_id"`
	Content    string            `json:"content"`
	Sentiment  SentimentCategory `json:"sentiment"`
	Emotions   EmotionVector     `json:"emotions"`
	Metrics    TextMetrics       `json:"metrics"`
	Confidence float64           `json:"confidence"`
	Channel    string            `json:"channel"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type AnalysisRecordParams struct {
	ID         string
	ClientName string
	DocumentID string
	Content    string
	Sentiment  SentimentCategory
	Emotions   EmotionVector
	Metrics    TextMetrics
	Confidence float64
	Channel    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewAnalysisRecord validates every field before returning; a zero UpdatedAt takes CreatedAt.
func NewAnalysisRecord(p AnalysisRecordParams) (AnalysisRecord, error) {
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = p.CreatedAt
	}
	rec := AnalysisRecord{
		ID:         strings.TrimSpace(p.ID),
		ClientName: strings.TrimSpace(p.ClientName),
		DocumentID: strings.TrimSpace(p.DocumentID),
		Content:    p.Content,
		Sentiment:  p.Sentiment,
		Emotions:   p.Emotions,
		Metrics:    p.Metrics,
		Confidence: p.Confidence,
		Channel:    strings.TrimSpace(p.Channel),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  updated,
	}
	if err := rec.Validate(); err != nil {
		return AnalysisRecord{}, err
	}
	return rec, nil
}

func (r AnalysisRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return NewValidationError("id", "cannot be empty")
	case strings.TrimSpace(r.ClientName) == "":
		return NewValidationError("client_name", "cannot be empty")
	case strings.TrimSpace(r.DocumentID) == "":
		return NewValidationError("document_id", "cannot be empty")
	case strings.TrimSpace(r.Content) == "":
		return NewValidationError("content", "cannot be empty")
	case strings.TrimSpace(r.Channel) == "":
		return NewValidationError("channel", "cannot be empty")
	case !r.Sentiment.Valid():
		return NewValidationError("sentiment", "unknown sentiment category "+string(r.Sentiment))
	case math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1:
		return NewValidationError("confidence", "must be between 0 and 1")
	case r.CreatedAt.IsZero():
		return NewValidationError("created_at", "is required")
	case r.UpdatedAt.Before(r.CreatedAt):
		return NewValidationError("updated_at", "cannot precede created_at")
	}
	if err := r.Emotions.Validate(); err != nil {
		return err
	}
	return r.Metrics.Validate()
}

func (r AnalysisRecord) IsHighConfidence() bool {
	return r.Confidence >= highConfidenceThreshold
}

// AnalysisPatch replaces the non-nil fields of a record. Identity and CreatedAt are immutable.
type AnalysisPatch struct {
	ClientName *string
	DocumentID *string
	Content    *string
	Sentiment  *SentimentCategory
	Emotions   *EmotionVector
	Metrics    *TextMetrics
	Confidence *float64
	Channel    *string
}

func (p AnalysisPatch) IsEmpty() bool {
	return p.ClientName == nil && p.DocumentID == nil && p.Content == nil && p.Sentiment == nil &&
		p.Emotions == nil && p.Metrics == nil && p.Confidence == nil && p.Channel == nil
}

// Apply returns a validated copy with the patch applied. UpdatedAt becomes now, or one
// nanosecond past the previous value when the clock has not advanced.
func (p AnalysisPatch) Apply(r AnalysisRecord, now time.Time) (AnalysisRecord, error) {
	params := AnalysisRecordParams{
		ID:         r.ID,
		ClientName: r.ClientName,
		DocumentID: r.DocumentID,
		Content:    r.Content,
		Sentiment:  r.Sentiment,
		Emotions:   r.Emotions,
		Metrics:    r.Metrics,
		Confidence: r.Confidence,
		Channel:    r.Channel,
		CreatedAt:  r.CreatedAt,
	}
	if p.ClientName != nil {
		params.ClientName = *p.ClientName
	}
	if p.DocumentID != nil {
		params.DocumentID = *p.DocumentID
	}
	if p.Content != nil {
		params.Content = *p.Content
	}
	if p.Sentiment != nil {
		params.Sentiment = *p.Sentiment
	}
	if p.Emotions != nil {
		params.Emotions = *p.Emotions
	}
	if p.Metrics != nil {
		params.Metrics = *p.Metrics
	}
	if p.Confidence != nil {
		params.Confidence = *p.Confidence
	}
	if p.Channel != nil {
		params.Channel = *p.Channel
	}

	if !now.After(r.UpdatedAt) {
		now = r.UpdatedAt.Add(time.Nanosecond)
	}
	params.UpdatedAt = now
	return NewAnalysisRecord(params)
}
