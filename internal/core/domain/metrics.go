package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultLanguage = "es"

	// Flesch constants. Syllables per word is a fixed approximation, not measured.
	fleschBase              = 206.835
	fleschSentenceWeight    = 1.015
	fleschSyllableWeight    = 84.6
	assumedSyllablesPerWord = 1.5
)

var (
	sentenceSplitter  = regexp.MustCompile(`[.!?]+`)
	paragraphSplitter = regexp.MustCompile(`\n\s*\n`)
)

type ReadabilityLevel string

const (
	ReadabilityVeryEasy        ReadabilityLevel = "very_easy"
	ReadabilityEasy            ReadabilityLevel = "easy"
	ReadabilityFairlyEasy      ReadabilityLevel = "fairly_easy"
	ReadabilityStandard        ReadabilityLevel = "standard"
	ReadabilityFairlyDifficult ReadabilityLevel = "fairly_difficult"
	ReadabilityDifficult       ReadabilityLevel = "difficult"
	ReadabilityVeryDifficult   ReadabilityLevel = "very_difficult"
)

type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

type TextMetrics struct {
	WordCount           int           `json:"word_count"`
	SentenceCount       int           `json:"sentence_count"`
	ParagraphCount      int           `json:"paragraph_count"`
	AvgWordsPerSentence float64       `json:"avg_words_per_sentence"`
	Readability         float64       `json:"readability_score"`
	ProcessingTime      time.Duration `json:"processing_time_ns"`
	Language            string        `json:"language"`
}

func NewTextMetrics(
	wordCount, sentenceCount, paragraphCount int,
	avgWordsPerSentence, readability float64,
	processingTime time.Duration,
	language string,
) (TextMetrics, error) {
	m := TextMetrics{
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		ParagraphCount:      paragraphCount,
		AvgWordsPerSentence: avgWordsPerSentence,
		Readability:         readability,
		ProcessingTime:      processingTime,
		Language:            language,
	}
	if err := m.Validate(); err != nil {
		return TextMetrics{}, err
	}
	return m, nil
}

func (m TextMetrics) Validate() error {
	switch {
	case m.WordCount < 0:
		return NewValidationError("metrics.word_count", "cannot be negative")
	case m.SentenceCount < 0:
		return NewValidationError("metrics.sentence_count", "cannot be negative")
	case m.ParagraphCount < 0:
		return NewValidationError("metrics.paragraph_count", "cannot be negative")
	case m.AvgWordsPerSentence < 0 || math.IsNaN(m.AvgWordsPerSentence):
		return NewValidationError("metrics.avg_words_per_sentence", "cannot be negative")
	case m.Readability < 0 || m.Readability > 100 || math.IsNaN(m.Readability):
		return NewValidationError("metrics.readability_score", "must be between 0 and 100")
	case m.ProcessingTime < 0:
		return NewValidationError("metrics.processing_time", "cannot be negative")
	case strings.TrimSpace(m.Language) == "":
		return NewValidationError("metrics.language", "cannot be empty")
	}
	return nil
}

// ComputeTextMetrics derives metrics from text. Output is a pure function of its inputs.
func ComputeTextMetrics(text string, elapsed time.Duration, languageHint string) (TextMetrics, error) {
	wordCount := len(strings.Fields(text))
	sentenceCount := countNonBlank(sentenceSplitter.Split(text, -1))
	paragraphCount := countNonBlank(paragraphSplitter.Split(text, -1))

	avg := 0.0
	if sentenceCount > 0 {
		avg = float64(wordCount) / float64(sentenceCount)
	}

	language := strings.TrimSpace(languageHint)
	if language == "" {
		language = DefaultLanguage
	}
	if elapsed < 0 {
		elapsed = 0
	}

	return NewTextMetrics(wordCount, sentenceCount, paragraphCount, avg, ReadabilityScore(avg), elapsed, language)
}

// ReadabilityScore is a Flesch-style score clamped into [0,100].
func ReadabilityScore(avgWordsPerSentence float64) float64 {
	score := fleschBase - fleschSentenceWeight*avgWordsPerSentence - fleschSyllableWeight*assumedSyllablesPerWord
	return math.Max(0, math.Min(100, score))
}

func countNonBlank(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func (m TextMetrics) ReadabilityLevel() ReadabilityLevel {
	switch s := m.Readability; {
	case s >= 90:
		return ReadabilityVeryEasy
	case s >= 80:
		return ReadabilityEasy
	case s >= 70:
		return ReadabilityFairlyEasy
	case s >= 60:
		return ReadabilityStandard
	case s >= 50:
		return ReadabilityFairlyDifficult
	case s >= 30:
		return ReadabilityDifficult
	default:
		return ReadabilityVeryDifficult
	}
}

func (m TextMetrics) ComplexityLevel() ComplexityLevel {
	switch {
	case m.AvgWordsPerSentence < 15:
		return ComplexityLow
	case m.AvgWordsPerSentence < 25:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

func (m TextMetrics) IsLongDocument() bool {
	return m.WordCount > 1000
}

// FormatProcessingTime renders the duration as "850ms", "1.5s" or "2m 5s".
func (m TextMetrics) FormatProcessingTime() string {
	d := m.ProcessingTime
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		minutes := int(d / time.Minute)
		seconds := int((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}
