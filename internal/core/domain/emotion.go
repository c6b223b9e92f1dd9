package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

type Emotion string

const (
	EmotionJoy      Emotion = "joy"
	EmotionSadness  Emotion = "sadness"
	EmotionAnger    Emotion = "anger"
	EmotionFear     Emotion = "fear"
	EmotionSurprise Emotion = "surprise"
	EmotionDisgust  Emotion = "disgust"
)

// Emotions is the declared order; Dominant breaks ties by it.
var Emotions = [6]Emotion{EmotionJoy, EmotionSadness, EmotionAnger, EmotionFear, EmotionSurprise, EmotionDisgust}

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

const emotionSumTolerance = 0.01

// EmotionVector is the relative emotional composition of a text. The zero value is not valid;
// use NewEmotionVector.
type EmotionVector struct {
	scores [6]float64
}

func NewEmotionVector(joy, sadness, anger, fear, surprise, disgust float64) (EmotionVector, error) {
	v := EmotionVector{scores: [6]float64{joy, sadness, anger, fear, surprise, disgust}}
	if err := v.Validate(); err != nil {
		return EmotionVector{}, err
	}
	return v, nil
}

// MustEmotionVector panics on invalid input. Intended for package-level constants.
func MustEmotionVector(joy, sadness, anger, fear, surprise, disgust float64) EmotionVector {
	v, err := NewEmotionVector(joy, sadness, anger, fear, surprise, disgust)
	if err != nil {
		panic(err)
	}
	return v
}

func (v EmotionVector) Validate() error {
	sum := 0.0
	for i, score := range v.scores {
		if math.IsNaN(score) || score < 0 || score > 1 {
			return NewValidationError("emotions", fmt.Sprintf("%s score must be between 0 and 1, got %v", Emotions[i], score))
		}
		sum += score
	}
	if math.Abs(sum-1) > emotionSumTolerance {
		return NewValidationError("emotions", fmt.Sprintf("emotion scores must sum to 1 (±%.2f), got %.4f", emotionSumTolerance, sum))
	}
	return nil
}

func (v EmotionVector) Joy() float64      { return v.scores[0] }
func (v EmotionVector) Sadness() float64  { return v.scores[1] }
func (v EmotionVector) Anger() float64    { return v.scores[2] }
func (v EmotionVector) Fear() float64     { return v.scores[3] }
func (v EmotionVector) Surprise() float64 { return v.scores[4] }
func (v EmotionVector) Disgust() float64  { return v.scores[5] }

// Values returns the scores in declared order.
func (v EmotionVector) Values() [6]float64 {
	return v.scores
}

func (v EmotionVector) Score(e Emotion) float64 {
	for i, name := range Emotions {
		if name == e {
			return v.scores[i]
		}
	}
	return 0
}

func (v EmotionVector) Dominant() Emotion {
	best := 0
	for i := 1; i < len(v.scores); i++ {
		if v.scores[i] > v.scores[best] {
			best = i
		}
	}
	return Emotions[best]
}

func (v EmotionVector) max() float64 {
	m := v.scores[0]
	for _, s := range v.scores[1:] {
		if s > m {
			m = s
		}
	}
	return m
}

func (v EmotionVector) Intensity() Intensity {
	m := v.max()
	switch {
	case m < 0.4:
		return IntensityLow
	case m < 0.7:
		return IntensityMedium
	default:
		return IntensityHigh
	}
}

// IsNeutral reports that no single emotion reaches 0.3.
func (v EmotionVector) IsNeutral() bool {
	return v.max() < 0.3
}

type emotionVectorJSON struct {
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Anger    float64 `json:"anger"`
	Fear     float64 `json:"fear"`
	Surprise float64 `json:"surprise"`
	Disgust  float64 `json:"disgust"`
}

func (v EmotionVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(emotionVectorJSON{
		Joy:      v.scores[0],
		Sadness:  v.scores[1],
		Anger:    v.scores[2],
		Fear:     v.scores[3],
		Surprise: v.scores[4],
		Disgust:  v.scores[5],
	})
}

// UnmarshalJSON enforces the same invariants as NewEmotionVector.
func (v *EmotionVector) UnmarshalJSON(data []byte) error {
	var raw emotionVectorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewEmotionVector(raw.Joy, raw.Sadness, raw.Anger, raw.Fear, raw.Surprise, raw.Disgust)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
