package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// RemoteModel scores feature rows against an HTTP endpoint speaking the
// {"instances": [...]} / {"predictions": [...]} convention used by common
// model servers.
type RemoteModel struct {
	name       string
	endpoint   string
	numFeature int
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

var _ weather.Model = (*RemoteModel)(nil)

// NewRemoteModel creates a remote model. numFeature, if positive, is checked
// against every row before the request is sent.
func NewRemoteModel(client *http.Client, endpoint string, numFeature int) (*RemoteModel, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("remote model endpoint is not configured")
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote-model",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
	})

	return &RemoteModel{
		name:       "remote:" + endpoint,
		endpoint:   endpoint,
		numFeature: numFeature,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 200 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
		circuit: cb,
	}, nil
}

// WithBackoff replaces the retry settings; used by tests to keep delays short.
func (m *RemoteModel) WithBackoff(b BackoffConfig) *RemoteModel {
	m.httpCfg.Backoff = b
	return m
}

func (m *RemoteModel) Name() string {
	return m.name
}

// NumFeature is the configured row width; 0 if unchecked.
func (m *RemoteModel) NumFeature() int {
	return m.numFeature
}

// Predict posts the rows and decodes one class per row. A prediction may be
// a class index or a probability vector, in which case its arg-max is used.
func (m *RemoteModel) Predict(ctx context.Context, features [][]float64) ([]int, error) {
	if m.numFeature > 0 {
		for i, row := range features {
			if len(row) != m.numFeature {
				return nil, fmt.Errorf("feature shape mismatch in row %d: model expects %d features, got %d", i, m.numFeature, len(row))
			}
		}
	}

	body, err := json.Marshal(struct {
		Instances [][]float64 `json:"instances"`
	}{Instances: features})
	if err != nil {
		return nil, fmt.Errorf("encode scoring request: %w", err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doWithResilience(ctx, m.httpCfg, m.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("remote model %s: %w", m.endpoint, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode scoring response: %w", err)
	}
	if len(payload.Predictions) != len(features) {
		return nil, fmt.Errorf("scoring endpoint returned %d predictions for %d rows", len(payload.Predictions), len(features))
	}

	out := make([]int, len(payload.Predictions))
	for i, raw := range payload.Predictions {
		idx, err := decodePrediction(raw)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		out[i] = idx
	}
	return out, nil
}

func decodePrediction(raw json.RawMessage) (int, error) {
	var probs []float64
	if err := json.Unmarshal(raw, &probs); err == nil {
		if len(probs) == 0 {
			return 0, fmt.Errorf("empty probability vector")
		}
		return argmax(probs), nil
	}

	var idx float64
	if err := json.Unmarshal(raw, &idx); err != nil {
		return 0, fmt.Errorf("expected class index or probability vector, got %s", raw)
	}
	if idx != float64(int(idx)) {
		return 0, fmt.Errorf("class index %v is not an integer", idx)
	}
	return int(idx), nil
}
