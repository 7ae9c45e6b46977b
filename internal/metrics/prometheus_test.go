package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	r := NewPrometheusRecorder()

	r.ObservePrediction("Sunny", 2*time.Millisecond)
	r.ObservePrediction("Sunny", time.Millisecond)
	r.ObservePrediction("Rainy", time.Millisecond)
	r.ObserveFailure(weather.StageEncoding, time.Millisecond)
	r.ObserveFailure("", time.Millisecond)
	r.ObserveExport()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.predictions.WithLabelValues("Sunny")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("Rainy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("encoding")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.exports))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestPrometheusRecorderRegistry(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObservePrediction("Cloudy", time.Millisecond)

	families, err := r.Registry().Gather()
	assert.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["weather_predictions_total"])
	assert.True(t, names["go_goroutines"])
}
