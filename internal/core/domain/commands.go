package domain

import (
	"io"
	"time"
)

type ParseOutcome string

const (
	OutcomeParsed   ParseOutcome = "parsed"
	OutcomeFallback ParseOutcome = "fallback"
)

type AnalyzeCommand struct {
	Document   []byte
	ClientName string
	DocumentID string
	Channel    string
}

type AnalyzeResult struct {
	Record  AnalysisRecord `json:"record"`
	Elapsed time.Duration  `json:"elapsed"`
	Outcome ParseOutcome   `json:"parse_outcome"`
}

type SubmitCommand struct {
	Filename   string
	Body       io.Reader
	ClientName string
	DocumentID string
	Channel    string
}

type HistoryQuery struct {
	Filter AnalysisFilter
	Page   PageRequest
}

type HistoryResult struct {
	Page       Page       `json:"page"`
	Statistics Statistics `json:"statistics"`
}

type FilterQuery struct {
	Filter AnalysisFilter
	Page   PageRequest
}

type FilterSummary struct {
	TotalMatches          int                       `json:"total_matches"`
	SentimentDistribution map[SentimentCategory]int `json:"sentiment_distribution"`
	ChannelDistribution   map[string]int            `json:"channel_distribution"`
	AverageConfidence     float64                   `json:"average_confidence"`
}

type FilterResult struct {
	Page          Page           `json:"page"`
	AppliedFilter AnalysisFilter `json:"applied_filter"`
	Summary       FilterSummary  `json:"summary"`
}

// FilterOptions lists the values currently present in the store.
type FilterOptions struct {
	Clients       []string            `json:"clients"`
	Channels      []string            `json:"channels"`
	Sentiments    []SentimentCategory `json:"sentiments"`
	EarliestAt    *time.Time          `json:"earliest_at,omitempty"`
	LatestAt      *time.Time          `json:"latest_at,omitempty"`
	MinConfidence float64             `json:"min_confidence"`
	MaxConfidence float64             `json:"max_confidence"`
}

type ExportCommand struct {
	Filter     AnalysisFilter
	Options    ExportOptions
	MaxRecords int
}

type ExportOutcome struct {
	Result         ExportResult `json:"result"`
	ExportedCount  int          `json:"exported_count"`
	TotalAvailable int          `json:"total_available"`
	ExportedAt     time.Time    `json:"exported_at"`
}

type ExportPreview struct {
	Sample        []AnalysisRecord `json:"sample"`
	Total         int              `json:"total"`
	EstimatedSize string           `json:"estimated_size"`
}
