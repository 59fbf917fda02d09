package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

// Metrics holds the server's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	renders            *prometheus.CounterVec
	renderDuration     prometheus.Histogram
	completionRequests *prometheus.CounterVec
	compiledEffects    prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manim_renders_total",
			Help: "Render attempts by outcome.",
		}, []string{"outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "manim_render_duration_seconds",
			Help:    "Wall time of manim runs.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 90, 120},
		}),
		completionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manim_completion_requests_total",
			Help: "Completion service calls by outcome.",
		}, []string{"outcome"}),
		compiledEffects: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "manim_compiled_effects",
			Help:    "Number of effects per compiled program.",
			Buckets: prometheus.LinearBuckets(1, 2, 8),
		}),
	}
	m.registry.MustRegister(
		m.renders,
		m.renderDuration,
		m.completionRequests,
		m.compiledEffects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRender(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.renderDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveCompletion(outcome string) {
	if m == nil {
		return
	}
	m.completionRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveProgram(effects int) {
	if m == nil {
		return
	}
	m.compiledEffects.Observe(float64(effects))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Metrics not initialized", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
