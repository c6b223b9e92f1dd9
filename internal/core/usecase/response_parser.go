package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

const (
	lexicalFallbackConfidence = 0.6
	neutralFallbackConfidence = 0.5
)

var (
	positiveIndicators = []string{"bueno", "excelente", "satisfecho", "contento", "feliz", "gracias"}
	negativeIndicators = []string{"malo", "terrible", "molesto", "enojado", "problema", "error"}

	fallbackEmotions = map[domain.SentimentCategory]domain.EmotionVector{
		domain.SentimentPositive: domain.MustEmotionVector(0.6, 0.08, 0.08, 0.08, 0.08, 0.08),
		domain.SentimentNegative: domain.MustEmotionVector(0.05, 0.35, 0.3, 0.1, 0.05, 0.15),
		domain.SentimentNeutral:  domain.MustEmotionVector(0.2, 0.16, 0.16, 0.16, 0.16, 0.16),
	}

	sentimentSynonyms = map[string]domain.SentimentCategory{
		"positive": domain.SentimentPositive,
		"positivo": domain.SentimentPositive,
		"pos":      domain.SentimentPositive,
		"negative": domain.SentimentNegative,
		"negativo": domain.SentimentNegative,
		"neg":      domain.SentimentNegative,
		"neutral":  domain.SentimentNeutral,
		"neutro":   domain.SentimentNeutral,
	}

	errNoJSONObject = errors.New("no json object in response")
)

// ParseResult is the classification triple extracted from a classifier response.
// FallbackCause is set only when Outcome is OutcomeFallback.
type ParseResult struct {
	Outcome       domain.ParseOutcome
	Sentiment     domain.SentimentCategory
	Emotions      domain.EmotionVector
	Confidence    float64
	Reasoning     string
	FallbackCause error
}

type ResponseParser struct {
	logger *slog.Logger
}

func NewResponseParser(logger *slog.Logger) *ResponseParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseParser{logger: logger}
}

type classifierPayload struct {
	OverallSentiment string `json:"overallSentiment"`
	EmotionScores    struct {
		Joy      float64 `json:"joy"`
		Sadness  float64 `json:"sadness"`
		Anger    float64 `json:"anger"`
		Fear     float64 `json:"fear"`
		Surprise float64 `json:"surprise"`
		Disgust  float64 `json:"disgust"`
	} `json:"emotionScores"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Parse never fails. Responses that cannot be decoded into a valid triple are
// classified by the keyword heuristic instead.
func (p *ResponseParser) Parse(raw string) ParseResult {
	result, err := p.parseStructured(raw)
	if err == nil {
		return result
	}

	fallback := heuristicClassification(raw)
	fallback.FallbackCause = err
	p.logger.Warn("classifier_response_fallback",
		"error", err,
		"sentiment", fallback.Sentiment,
		"confidence", fallback.Confidence,
	)
	return fallback
}

func (p *ResponseParser) parseStructured(raw string) (ParseResult, error) {
	object, ok := extractJSONObject(raw)
	if !ok {
		return ParseResult{}, errNoJSONObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return ParseResult{}, fmt.Errorf("decode response: %w", err)
	}
	for _, key := range []string{"overallSentiment", "emotionScores", "confidence"} {
		if value, ok := fields[key]; !ok || string(value) == "null" {
			return ParseResult{}, fmt.Errorf("missing field %q", key)
		}
	}

	var payload classifierPayload
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		return ParseResult{}, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(payload.OverallSentiment) == "" {
		return ParseResult{}, errors.New(`missing field "overallSentiment"`)
	}

	e := payload.EmotionScores
	emotions, err := domain.NewEmotionVector(e.Joy, e.Sadness, e.Anger, e.Fear, e.Surprise, e.Disgust)
	if err != nil {
		return ParseResult{}, err
	}

	return ParseResult{
		Outcome:    domain.OutcomeParsed,
		Sentiment:  p.normalizeSentiment(payload.OverallSentiment),
		Emotions:   emotions,
		Confidence: clampUnit(payload.Confidence),
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}, nil
}

func (p *ResponseParser) normalizeSentiment(value string) domain.SentimentCategory {
	if category, ok := sentimentSynonyms[strings.ToLower(strings.TrimSpace(value))]; ok {
		return category
	}
	p.logger.Warn("classifier_unknown_sentiment", "value", value)
	return domain.SentimentNeutral
}

func heuristicClassification(raw string) ParseResult {
	text := strings.ToLower(raw)
	positive := countIndicators(text, positiveIndicators)
	negative := countIndicators(text, negativeIndicators)

	result := ParseResult{
		Outcome:    domain.OutcomeFallback,
		Sentiment:  domain.SentimentNeutral,
		Confidence: neutralFallbackConfidence,
		Reasoning:  "keyword heuristic",
	}
	switch {
	case positive > negative:
		result.Sentiment = domain.SentimentPositive
		result.Confidence = lexicalFallbackConfidence
	case negative > positive:
		result.Sentiment = domain.SentimentNegative
		result.Confidence = lexicalFallbackConfidence
	}
	result.Emotions = fallbackEmotions[result.Sentiment]
	return result
}

// countIndicators counts distinct indicator words present, not occurrences.
func countIndicators(text string, indicators []string) int {
	n := 0
	for _, word := range indicators {
		if strings.Contains(text, word) {
			n++
		}
	}
	return n
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// extractJSONObject returns the first balanced top-level object, ignoring braces inside strings.
func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
