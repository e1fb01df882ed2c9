// Package metrics exposes the command pipeline's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "beyond"

// Recorder implements engine.Recorder on top of a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	// classifications counts classifier predictions by status
	// (resolved, unresolved, unavailable).
	classifications *prometheus.CounterVec
	classifyLatency prometheus.Histogram
	// resolutions counts resolved intents by the tier that resolved them.
	resolutions    *prometheus.CounterVec
	clarifications *prometheus.CounterVec
	handlerCalls   *prometheus.CounterVec
	handlerLatency *prometheus.HistogramVec
	cycles         *prometheus.CounterVec
	classifierUp   prometheus.Gauge
}

// New registers the pipeline metrics, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		classifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "predictions_total",
			Help:      "Classifier predictions by status",
		}, []string{"status"}),
		classifyLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "prediction_seconds",
			Help:      "Time spent vectorizing and scoring one utterance",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "resolutions_total",
			Help:      "Resolved intents by source tier",
		}, []string{"source", "intent"}),
		clarifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "clarifications_total",
			Help:      "Clarification round-trips by outcome",
		}, []string{"outcome"}),
		handlerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handler",
			Name:      "calls_total",
			Help:      "Action handler invocations by handler and success",
		}, []string{"handler", "success"}),
		handlerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "handler",
			Name:      "duration_seconds",
			Help:      "Action handler latency",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"handler"}),
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycles_total",
			Help:      "Command cycles by result kind",
		}, []string{"kind"}),
		classifierUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "available",
			Help:      "1 when an intent model is loaded",
		}),
	}
}

func (r *Recorder) ObserveClassification(status string, d time.Duration) {
	r.classifications.WithLabelValues(status).Inc()
	r.classifyLatency.Observe(d.Seconds())
}

func (r *Recorder) ObserveResolution(source, intent string) {
	r.resolutions.WithLabelValues(source, intent).Inc()
}

func (r *Recorder) ObserveClarification(outcome string) {
	r.clarifications.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveHandler(handler string, success bool, d time.Duration) {
	r.handlerCalls.WithLabelValues(handler, strconv.FormatBool(success)).Inc()
	r.handlerLatency.WithLabelValues(handler).Observe(d.Seconds())
}

func (r *Recorder) ObserveCycle(kind string) {
	r.cycles.WithLabelValues(kind).Inc()
}

// SetClassifierAvailable records whether the statistical tier is active.
func (r *Recorder) SetClassifierAvailable(up bool) {
	if up {
		r.classifierUp.Set(1)
	} else {
		r.classifierUp.Set(0)
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
