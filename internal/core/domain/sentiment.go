package domain

import (
	"fmt"
	"strings"
)

type SentimentCategory string

const (
	SentimentPositive SentimentCategory = "positive"
	SentimentNeutral  SentimentCategory = "neutral"
	SentimentNegative SentimentCategory = "negative"
)

// SentimentCategories lists the categories in presentation order.
func SentimentCategories() []SentimentCategory {
	return []SentimentCategory{SentimentPositive, SentimentNeutral, SentimentNegative}
}

func (s SentimentCategory) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

func (s SentimentCategory) String() string {
	return string(s)
}

// ParseSentimentCategory accepts the canonical names only, case-insensitively.
func ParseSentimentCategory(value string) (SentimentCategory, error) {
	category := SentimentCategory(strings.ToLower(strings.TrimSpace(value)))
	if !category.Valid() {
		return "", NewValidationError("sentiment", fmt.Sprintf("unknown sentiment category %q", value))
	}
	return category, nil
}

// SentimentPresentation is display metadata. It carries no invariants.
type SentimentPresentation struct {
	DisplayName string
	Color       string
	Icon        string
}

func (s SentimentCategory) Presentation() SentimentPresentation {
	switch s {
	case SentimentPositive:
		return SentimentPresentation{DisplayName: "Positivo", Color: "#4caf50", Icon: "😊"}
	case SentimentNeutral:
		return SentimentPresentation{DisplayName: "Neutral", Color: "#ff9800", Icon: "😐"}
	case SentimentNegative:
		return SentimentPresentation{DisplayName: "Negativo", Color: "#f44336", Icon: "😞"}
	default:
		return SentimentPresentation{DisplayName: "Desconocido", Color: "#9e9e9e", Icon: "❓"}
	}
}
