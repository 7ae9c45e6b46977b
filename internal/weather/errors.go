package weather

import (
	"errors"
	"fmt"
)

// Stage names the step of the inference chain that failed.
type Stage string

const (
	StageEncoding   Stage = "encoding"
	StagePrediction Stage = "prediction"
	StageDecoding   Stage = "decoding"
)

var (
	// ErrInference matches every InferenceError.
	ErrInference = errors.New("inference failed")

	// ErrEncoding matches failures of the preprocessing transform, e.g. an
	// unseen category or a missing column.
	ErrEncoding = errors.New("encoding failed")
	// ErrPrediction matches failures of the predictive model, e.g. a feature
	// width mismatch or an unreachable scoring backend.
	ErrPrediction = errors.New("prediction failed")
	// ErrDecoding matches failures mapping a class index back to its label.
	ErrDecoding = errors.New("decoding failed")
)

// InferenceError is the only error kind returned by Predictor.Predict.
type InferenceError struct {
	Stage Stage
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInference or the sentinel of e's stage.
func (e *InferenceError) Is(target error) bool {
	switch target {
	case ErrInference:
		return true
	case ErrEncoding:
		return e.Stage == StageEncoding
	case ErrPrediction:
		return e.Stage == StagePrediction
	case ErrDecoding:
		return e.Stage == StageDecoding
	}
	return false
}

// StageOf returns the failing stage of err, if err is an InferenceError.
func StageOf(err error) (Stage, bool) {
	var ie *InferenceError
	if errors.As(err, &ie) {
		return ie.Stage, true
	}
	return "", false
}
