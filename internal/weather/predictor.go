package weather

import (
	"context"
	"fmt"
)

// Predictor runs the transform, predict, decode chain for a single
// observation over a fixed set of artifacts. It holds no mutable state and
// is safe for concurrent use as long as the artifacts are.
type Predictor struct {
	artifacts Artifacts
}

// NewPredictor creates a Predictor bound to the given artifacts.
func NewPredictor(artifacts Artifacts) (*Predictor, error) {
	if err := artifacts.validate(); err != nil {
		return nil, fmt.Errorf("invalid artifacts: %w", err)
	}
	return &Predictor{artifacts: artifacts}, nil
}

// Classes returns the closed set of labels Predict can produce.
func (p *Predictor) Classes() []string {
	return p.artifacts.Labels.Classes()
}

// ModelName returns the name of the underlying model artifact.
func (p *Predictor) ModelName() string {
	return p.artifacts.Model.Name()
}

// Predict classifies one observation. Numeric values are not range-checked
// here; every failure is returned as an *InferenceError.
func (p *Predictor) Predict(ctx context.Context, obs Observation) (Prediction, error) {
	features, err := p.artifacts.Preprocessor.Transform([]Record{obs.Record()})
	if err != nil {
		return Prediction{}, &InferenceError{Stage: StageEncoding, Err: err}
	}
	if len(features) != 1 {
		return Prediction{}, &InferenceError{
			Stage: StageEncoding,
			Err:   fmt.Errorf("preprocessor returned %d rows for 1 record", len(features)),
		}
	}

	indices, err := p.artifacts.Model.Predict(ctx, features)
	if err != nil {
		return Prediction{}, &InferenceError{Stage: StagePrediction, Err: err}
	}
	if len(indices) != 1 {
		return Prediction{}, &InferenceError{
			Stage: StagePrediction,
			Err:   fmt.Errorf("model %s returned %d class indices for 1 row", p.artifacts.Model.Name(), len(indices)),
		}
	}

	labels, err := p.artifacts.Labels.InverseTransform(indices)
	if err != nil {
		return Prediction{}, &InferenceError{Stage: StageDecoding, Err: err}
	}
	if len(labels) != 1 || labels[0] == "" {
		return Prediction{}, &InferenceError{
			Stage: StageDecoding,
			Err:   fmt.Errorf("label encoder returned no label for class %d", indices[0]),
		}
	}

	return Prediction{Label: labels[0]}, nil
}
