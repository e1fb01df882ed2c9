// Package classifier is the statistical tier of intent resolution: a TF-IDF
// vectorizer feeding a multinomial logistic regression, with an offline
// trainer and a runtime Service that may legitimately have no model at all.
package classifier

import (
	"errors"
	"log/slog"
	"os"
)

// Status tells the caller how to treat a Prediction.
type Status int

const (
	// Unavailable means no model is loaded or prediction failed; the caller
	// goes straight to the static rules.
	Unavailable Status = iota
	// Resolved carries a usable intent.
	Resolved
	// Unresolved means the model ran but had nothing confident to say.
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	default:
		return "unavailable"
	}
}

// Prediction is the classifier's answer for one utterance.
type Prediction struct {
	Status     Status
	Intent     string
	Confidence float64
}

// Service wraps an optional Model. The zero value and a nil *Service are
// both valid and always unavailable.
type Service struct {
	model         *Model
	minConfidence float64
	logger        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// DefaultMinConfidence is the threshold the assistant runs with. A winner
// below it is usually a near-uniform guess, better left to the static rules.
const DefaultMinConfidence = 0.5

// WithMinConfidence reports predictions below threshold as Unresolved.
func WithMinConfidence(threshold float64) Option {
	return func(s *Service) { s.minConfidence = threshold }
}

// WithLogger sets the logger used for load and prediction faults.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wraps an already loaded model. model may be nil.
func NewService(model *Model, opts ...Option) *Service {
	s := &Service{model: model, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load builds a Service from the artifact at path. It never fails: a missing
// artifact is the normal static-only mode and is logged at info, a broken one
// is logged as a warning. Either way the Service reports !Available().
func Load(path string, opts ...Option) *Service {
	s := NewService(nil, opts...)
	if path == "" {
		s.logger.Info("intent classifier disabled, using static rules only")
		return s
	}
	model, err := LoadModel(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Info("no intent model found, using static rules only", "path", path)
	case err != nil:
		s.logger.Warn("intent model could not be loaded, using static rules only", "path", path, "err", err)
	default:
		s.model = model
		s.logger.Info("intent classifier loaded",
			"path", path, "intents", len(model.Labels), "features", model.Vectorizer.Size())
	}
	return s
}

// Available reports whether a model is loaded.
func (s *Service) Available() bool {
	return s != nil && s.model != nil
}

// Labels lists the intents the loaded model can predict.
func (s *Service) Labels() []string {
	if !s.Available() {
		return nil
	}
	return append([]string(nil), s.model.Labels...)
}

// Predict classifies normalized text. Text with no known features, or a
// winner below the confidence threshold, is Unresolved. A fault inside the
// model is recovered and reported as Unavailable for this utterance.
func (s *Service) Predict(text string) (p Prediction) {
	if !s.Available() {
		return Prediction{Status: Unavailable}
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("intent prediction failed", "panic", r)
			p = Prediction{Status: Unavailable}
		}
	}()

	vec := s.model.Vectorizer.Transform(text)
	if len(vec) == 0 {
		return Prediction{Status: Unresolved}
	}
	intent, confidence := s.model.Classify(vec)
	if confidence < s.minConfidence {
		return Prediction{Status: Unresolved, Intent: intent, Confidence: confidence}
	}
	return Prediction{Status: Resolved, Intent: intent, Confidence: confidence}
}
