// Package metrics exposes prediction counters and latencies to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// PrometheusRecorder implements weather.Recorder on a private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	predictions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	exports     prometheus.Counter
}

var _ weather.Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a recorder with Go and process collectors
// registered alongside the prediction metrics.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_predictions_total",
			Help: "Total successful predictions by predicted weather type.",
		}, []string{"label"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_prediction_failures_total",
			Help: "Total failed predictions by failing stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_prediction_duration_seconds",
			Help:    "Duration of the transform, predict, decode chain.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"outcome"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_exports_total",
			Help: "Total CSV exports generated.",
		}),
	}

	registry.MustRegister(r.predictions)
	registry.MustRegister(r.failures)
	registry.MustRegister(r.duration)
	registry.MustRegister(r.exports)

	return r
}

// Registry returns the Prometheus registry to expose.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObservePrediction records a successful prediction.
func (r *PrometheusRecorder) ObservePrediction(label string, elapsed time.Duration) {
	r.predictions.WithLabelValues(label).Inc()
	r.duration.WithLabelValues("success").Observe(elapsed.Seconds())
}

// ObserveFailure records a failed prediction.
func (r *PrometheusRecorder) ObserveFailure(stage weather.Stage, elapsed time.Duration) {
	if stage == "" {
		stage = "unknown"
	}
	r.failures.WithLabelValues(string(stage)).Inc()
	r.duration.WithLabelValues("failure").Observe(elapsed.Seconds())
}

// ObserveExport records a generated CSV export.
func (r *PrometheusRecorder) ObserveExport() {
	r.exports.Inc()
}
