package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mediaid"

// Metrics owns a private registry so tests and multiple services in one
// process never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	analyses        *prometheus.CounterVec
	symptoms        *prometheus.CounterVec
	analyzeDuration prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	sideEffectFails *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "symptoms",
			Name:      "analyses_total",
			Help:      "Number of texts analyzed, by source.",
		}, []string{"source"}),
		symptoms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "symptoms",
			Name:      "detected_total",
			Help:      "Number of symptoms reported, by category and match strategy.",
		}, []string{"category", "strategy"}),
		analyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "symptoms",
			Name:      "analyze_duration_seconds",
			Help:      "Time spent running the detector on one text.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups, by outcome.",
		}, []string{"result"}),
		sideEffectFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "symptoms",
			Name:      "side_effect_failures_total",
			Help:      "Failures of cache, history or publish steps that did not fail the request.",
		}, []string{"step"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		m.analyses,
		m.symptoms,
		m.analyzeDuration,
		m.cacheLookups,
		m.sideEffectFails,
	)
	return m
}

func (m *Metrics) ObserveAnalysis(source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(source).Inc()
	m.analyzeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSymptom(category, strategy string) {
	if m == nil {
		return
	}
	m.symptoms.WithLabelValues(category, strategy).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFailure(step string) {
	if m == nil {
		return
	}
	m.sideEffectFails.WithLabelValues(step).Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
