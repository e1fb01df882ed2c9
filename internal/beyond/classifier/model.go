package classifier

import (
	"fmt"
	"math"
)

// Model is a fitted vectorizer plus a multinomial logistic regression over
// its features.
type Model struct {
	Vectorizer *Vectorizer `json:"vectorizer"`
	// Labels are the intents, one per row of Weights.
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// Validate checks that the model's dimensions agree with each other.
func (m *Model) Validate() error {
	if m.Vectorizer == nil {
		return fmt.Errorf("model has no vectorizer")
	}
	if len(m.Vectorizer.IDF) != len(m.Vectorizer.Terms) {
		return fmt.Errorf("vectorizer has %d terms but %d idf weights", len(m.Vectorizer.Terms), len(m.Vectorizer.IDF))
	}
	if len(m.Labels) == 0 {
		return fmt.Errorf("model has no labels")
	}
	if len(m.Weights) != len(m.Labels) || len(m.Bias) != len(m.Labels) {
		return fmt.Errorf("model has %d labels, %d weight rows and %d biases", len(m.Labels), len(m.Weights), len(m.Bias))
	}
	for k, row := range m.Weights {
		if len(row) != m.Vectorizer.Size() {
			return fmt.Errorf("weight row %d (%s) has %d columns, want %d", k, m.Labels[k], len(row), m.Vectorizer.Size())
		}
	}
	return nil
}

// Probabilities returns the softmax class distribution for vec.
func (m *Model) Probabilities(vec Vector) []float64 {
	scores := make([]float64, len(m.Labels))
	for k := range scores {
		s := m.Bias[k]
		row := m.Weights[k]
		for _, f := range vec {
			s += row[f.Index] * f.Value
		}
		scores[k] = s
	}
	return softmax(scores)
}

// Classify returns the most likely label for vec and its probability.
func (m *Model) Classify(vec Vector) (string, float64) {
	probs := m.Probabilities(vec)
	best := 0
	for k := 1; k < len(probs); k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return m.Labels[best], probs[best]
}

// Predict vectorizes text and classifies it.
func (m *Model) Predict(text string) (string, float64) {
	return m.Classify(m.Vectorizer.Transform(text))
}

func softmax(scores []float64) []float64 {
	peak := math.Inf(-1)
	for _, s := range scores {
		if s > peak {
			peak = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
