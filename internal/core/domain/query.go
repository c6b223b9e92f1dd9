package domain

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AnalysisFilter narrows a record set. Every set field must match; zero fields match everything.
type AnalysisFilter struct {
	ClientName    string            `json:"client_name,omitempty"`
	Sentiment     SentimentCategory `json:"sentiment,omitempty"`
	Channel       string            `json:"channel,omitempty"`
	CreatedFrom   *time.Time        `json:"created_from,omitempty"`
	CreatedTo     *time.Time        `json:"created_to,omitempty"`
	MinConfidence *float64          `json:"min_confidence,omitempty"`
	MaxConfidence *float64          `json:"max_confidence,omitempty"`
}

// Sanitize drops criteria that cannot be applied: unknown categories and confidence bounds
// outside [0,1]. Text criteria are trimmed.
func (f AnalysisFilter) Sanitize() AnalysisFilter {
	out := AnalysisFilter{
		ClientName:  strings.TrimSpace(f.ClientName),
		Channel:     strings.TrimSpace(f.Channel),
		CreatedFrom: f.CreatedFrom,
		CreatedTo:   f.CreatedTo,
	}
	if f.Sentiment.Valid() {
		out.Sentiment = f.Sentiment
	}
	if validConfidenceBound(f.MinConfidence) {
		out.MinConfidence = f.MinConfidence
	}
	if validConfidenceBound(f.MaxConfidence) {
		out.MaxConfidence = f.MaxConfidence
	}
	return out
}

func validConfidenceBound(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && *v >= 0 && *v <= 1
}

// Matches applies the sanitized filter to one record.
func (f AnalysisFilter) Matches(r AnalysisRecord) bool {
	f = f.Sanitize()
	if f.ClientName != "" && !containsFold(r.ClientName, f.ClientName) {
		return false
	}
	if f.Sentiment != "" && r.Sentiment != f.Sentiment {
		return false
	}
	if f.Channel != "" && !containsFold(r.Channel, f.Channel) {
		return false
	}
	if f.CreatedFrom != nil && r.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && r.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.MinConfidence != nil && r.Confidence < *f.MinConfidence {
		return false
	}
	if f.MaxConfidence != nil && r.Confidence > *f.MaxConfidence {
		return false
	}
	return true
}

func (f AnalysisFilter) IsEmpty() bool {
	s := f.Sanitize()
	return s.ClientName == "" && s.Sentiment == "" && s.Channel == "" && s.CreatedFrom == nil &&
		s.CreatedTo == nil && s.MinConfidence == nil && s.MaxConfidence == nil
}

func containsFold(value, substr string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

type SortField string

const (
	SortByCreatedAt  SortField = "created_at"
	SortByUpdatedAt  SortField = "updated_at"
	SortByClientName SortField = "client_name"
	SortByDocumentID SortField = "document_id"
	SortByChannel    SortField = "channel"
	SortBySentiment  SortField = "sentiment"
	SortByConfidence SortField = "confidence"
)

func (s SortField) Valid() bool {
	switch s {
	case SortByCreatedAt, SortByUpdatedAt, SortByClientName, SortByDocumentID,
		SortByChannel, SortBySentiment, SortByConfidence:
		return true
	default:
		return false
	}
}

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// PageRequest selects a page. Zero values mean defaults; see Normalize.
type PageRequest struct {
	Page      int       `json:"page"`
	Limit     int       `json:"limit"`
	SortBy    SortField `json:"sort_by,omitempty"`
	SortOrder SortOrder `json:"sort_order,omitempty"`
}

// Normalize clamps out-of-range values instead of rejecting them.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	switch {
	case r.Limit == 0:
		r.Limit = DefaultPageSize
	case r.Limit < 1:
		r.Limit = 1
	case r.Limit > MaxPageSize:
		r.Limit = MaxPageSize
	}
	if !r.SortBy.Valid() {
		r.SortBy = SortByCreatedAt
	}
	if r.SortOrder != SortAsc {
		r.SortOrder = SortDesc
	}
	return r
}

func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

type Page struct {
	Items      []AnalysisRecord `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// NewPage expects a normalized request.
func NewPage(items []AnalysisRecord, total int, req PageRequest) Page {
	totalPages := total / req.Limit
	if total%req.Limit != 0 {
		totalPages++
	}
	if items == nil {
		items = []AnalysisRecord{}
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}
}

func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

type Statistics struct {
	Total             int            `json:"total"`
	PositiveCount     int            `json:"positive_count"`
	NeutralCount      int            `json:"neutral_count"`
	NegativeCount     int            `json:"negative_count"`
	AverageConfidence float64        `json:"average_confidence"`
	MostCommonChannel string         `json:"most_common_channel,omitempty"`
	ChannelCounts     map[string]int `json:"channel_counts"`
}

// ComputeStatistics aggregates records in the given order; the first channel seen wins count ties.
func ComputeStatistics(records []AnalysisRecord) Statistics {
	stats := Statistics{ChannelCounts: make(map[string]int)}
	if len(records) == 0 {
		return stats
	}

	sum := 0.0
	var channelOrder []string
	for _, r := range records {
		stats.Total++
		sum += r.Confidence
		switch r.Sentiment {
		case SentimentPositive:
			stats.PositiveCount++
		case SentimentNeutral:
			stats.NeutralCount++
		case SentimentNegative:
			stats.NegativeCount++
		}
		if stats.ChannelCounts[r.Channel] == 0 {
			channelOrder = append(channelOrder, r.Channel)
		}
		stats.ChannelCounts[r.Channel]++
	}

	bestCount := 0
	for _, channel := range channelOrder {
		if n := stats.ChannelCounts[channel]; n > bestCount {
			bestCount = n
			stats.MostCommonChannel = channel
		}
	}
	stats.AverageConfidence = sum / float64(stats.Total)
	return stats
}
