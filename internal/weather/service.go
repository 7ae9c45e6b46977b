package weather

import (
	"context"
	"log"
	"time"
)

// Recorder receives the outcome of every prediction.
type Recorder interface {
	ObservePrediction(label string, elapsed time.Duration)
	ObserveFailure(stage Stage, elapsed time.Duration)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObservePrediction(string, time.Duration) {}
func (NopRecorder) ObserveFailure(Stage, time.Duration)     {}

// Service wraps a Predictor with logging and metrics for the HTTP layer.
type Service struct {
	predictor *Predictor
	recorder  Recorder
}

// NewService creates a new Service. A nil recorder disables metrics.
func NewService(predictor *Predictor, recorder Recorder) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Service{
		predictor: predictor,
		recorder:  recorder,
	}
}

// Predict classifies obs and records the outcome. Errors are the
// *InferenceError returned by the predictor.
func (s *Service) Predict(ctx context.Context, obs Observation) (Prediction, error) {
	start := time.Now()
	pred, err := s.predictor.Predict(ctx, obs)
	elapsed := time.Since(start)

	if err != nil {
		stage, _ := StageOf(err)
		log.Printf("ERROR: prediction failed at %s stage: %v", stage, err)
		s.recorder.ObserveFailure(stage, elapsed)
		return Prediction{}, err
	}

	log.Printf("DEBUG: predicted %q in %s", pred.Label, elapsed)
	s.recorder.ObservePrediction(pred.Label, elapsed)
	return pred, nil
}

// Classes delegates to the predictor.
func (s *Service) Classes() []string {
	return s.predictor.Classes()
}

// ModelName delegates to the predictor.
func (s *Service) ModelName() string {
	return s.predictor.ModelName()
}
