package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestComputeTextMetricsCounts(t *testing.T) {
	text := "Gracias por su ayuda. Estoy muy satisfecho!\n\nHasta pronto?? Adiós..."
	m, err := ComputeTextMetrics(text, 250*time.Millisecond, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.WordCount != 10 {
		t.Fatalf("expected 10 words, got %d", m.WordCount)
	}
	if m.SentenceCount != 4 {
		t.Fatalf("expected 4 sentences, got %d", m.SentenceCount)
	}
	if m.ParagraphCount != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", m.ParagraphCount)
	}
	if m.AvgWordsPerSentence != 2.5 {
		t.Fatalf("expected avg 2.5, got %v", m.AvgWordsPerSentence)
	}
	if m.Language != DefaultLanguage {
		t.Fatalf("expected default language, got %q", m.Language)
	}
	want := 206.835 - 1.015*2.5 - 84.6*1.5
	if math.Abs(m.Readability-want) > 1e-9 {
		t.Fatalf("expected readability %v, got %v", want, m.Readability)
	}
	if m.ReadabilityLevel() != ReadabilityFairlyEasy {
		t.Fatalf("expected fairly_easy, got %s", m.ReadabilityLevel())
	}
}

func TestComputeTextMetricsWithoutSentences(t *testing.T) {
	m, err := ComputeTextMetrics("   ", 0, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.WordCount != 0 || m.SentenceCount != 0 || m.AvgWordsPerSentence != 0 {
		t.Fatalf("expected empty counts, got %+v", m)
	}
	if m.Language != "en" {
		t.Fatalf("expected language hint to be kept, got %q", m.Language)
	}
}

func TestReadabilityScoreClamps(t *testing.T) {
	if got := ReadabilityScore(1000); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := ReadabilityScore(0); got < 0 || got > 100 {
		t.Fatalf("expected score in range, got %v", got)
	}
}

func TestNewTextMetricsRejectsInvalid(t *testing.T) {
	if _, err := NewTextMetrics(-1, 0, 0, 0, 50, 0, "es"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative count, got %v", err)
	}
	if _, err := NewTextMetrics(1, 1, 1, 1, 101, 0, "es"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for readability, got %v", err)
	}
	if _, err := NewTextMetrics(1, 1, 1, 1, 50, -time.Second, "es"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for processing time, got %v", err)
	}
}

func TestTextMetricsLevelsAndFormatting(t *testing.T) {
	cases := []struct {
		score float64
		want  ReadabilityLevel
	}{
		{95, ReadabilityVeryEasy},
		{85, ReadabilityEasy},
		{72, ReadabilityFairlyEasy},
		{60, ReadabilityStandard},
		{55, ReadabilityFairlyDifficult},
		{30, ReadabilityDifficult},
		{10, ReadabilityVeryDifficult},
	}
	for _, tc := range cases {
		m := TextMetrics{Readability: tc.score}
		if got := m.ReadabilityLevel(); got != tc.want {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.want, got)
		}
	}

	if got := (TextMetrics{AvgWordsPerSentence: 20}).ComplexityLevel(); got != ComplexityMedium {
		t.Fatalf("expected medium complexity, got %s", got)
	}
	if got := (TextMetrics{ProcessingTime: 850 * time.Millisecond}).FormatProcessingTime(); got != "850ms" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := (TextMetrics{ProcessingTime: 1500 * time.Millisecond}).FormatProcessingTime(); got != "1.5s" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := (TextMetrics{ProcessingTime: 125 * time.Second}).FormatProcessingTime(); got != "2m 5s" {
		t.Fatalf("unexpected format: %q", got)
	}
}
