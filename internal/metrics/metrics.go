// Package metrics exposes the dashboard's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	simulated        *prometheus.CounterVec
	coverage         prometheus.Gauge
	coveragePasses   prometheus.Counter
	alertsTriggered  prometheus.Counter
	reportsGenerated *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riskmap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		simulated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "simulated_fallbacks_total",
			Help:      "County refreshes served from simulated data, by reason.",
		}, []string{"reason"}),
		coverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riskmap",
			Name:      "map_coverage_ratio",
			Help:      "Fraction of rendered county boundaries with data in the last render.",
		}),
		coveragePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "coverage_fill_passes_total",
			Help:      "Extra simulation passes run because coverage was too low.",
		}),
		alertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "alerts_triggered_total",
			Help:      "Alerts whose condition was met.",
		}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "reports_generated_total",
			Help:      "Reports generated, by format.",
		}, []string{"format"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.simulated,
		m.coverage,
		m.coveragePasses,
		m.alertsTriggered,
		m.reportsGenerated,
	)
	return m
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SimulatedFallback(reason string) {
	if m == nil {
		return
	}
	m.simulated.WithLabelValues(reason).Inc()
}

func (m *Metrics) Coverage(ratio float64) {
	if m == nil {
		return
	}
	m.coverage.Set(ratio)
}

func (m *Metrics) CoveragePass() {
	if m == nil {
		return
	}
	m.coveragePasses.Inc()
}

func (m *Metrics) AlertTriggered() {
	if m == nil {
		return
	}
	m.alertsTriggered.Inc()
}

func (m *Metrics) ReportGenerated(format string) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(format).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps h, counting requests and latency under route.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	if m == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
