package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the extension registry.
type Metrics struct {
	registry               *prometheus.Registry
	requestsTotal          *prometheus.CounterVec
	errorsTotal            prometheus.Counter
	resolutionsTotal       *prometheus.CounterVec
	unresolvedTotal        prometheus.Counter
	rendererFailuresTotal  *prometheus.CounterVec
	pipelinesPreparedTotal prometheus.Counter
	registeredRenderers    *prometheus.GaugeVec
	registeredSources      prometheus.Gauge
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaext_requests_total",
		Help: "Total number of HTTP requests received, by status class",
	}, []string{"status"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediaext_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	resolutionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaext_resolutions_total",
		Help: "Content locators resolved to a builder, by builder name",
	}, []string{"builder"})
	unresolvedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediaext_unresolved_total",
		Help: "Content locators no registered builder matched",
	})
	rendererFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaext_renderer_failures_total",
		Help: "Renderer identifiers that could not be instantiated, by category",
	}, []string{"category"})
	pipelinesPreparedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediaext_pipelines_prepared_total",
		Help: "Pipelines assembled successfully",
	})
	registeredRenderers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mediaext_registered_renderers",
		Help: "Renderer identifiers registered, by category",
	}, []string{"category"})
	registeredSources := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mediaext_registered_sources",
		Help: "Media source builder entries registered",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		resolutionsTotal,
		unresolvedTotal,
		rendererFailuresTotal,
		pipelinesPreparedTotal,
		registeredRenderers,
		registeredSources,
	)

	return &Metrics{
		registry:               registry,
		requestsTotal:          requestsTotal,
		errorsTotal:            errorsTotal,
		resolutionsTotal:       resolutionsTotal,
		unresolvedTotal:        unresolvedTotal,
		rendererFailuresTotal:  rendererFailuresTotal,
		pipelinesPreparedTotal: pipelinesPreparedTotal,
		registeredRenderers:    registeredRenderers,
		registeredSources:      registeredSources,
	}
}

// IncRequests increments the request counter for the status class ("2xx", "4xx", ...).
func (m *Metrics) IncRequests(statusClass string) {
	m.requestsTotal.WithLabelValues(statusClass).Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncResolved records a successful resolution to builder.
func (m *Metrics) IncResolved(builder string) {
	m.resolutionsTotal.WithLabelValues(builder).Inc()
}

// IncUnresolved records a locator no builder matched.
func (m *Metrics) IncUnresolved() {
	m.unresolvedTotal.Inc()
}

// IncRendererFailures records a renderer that could not be instantiated.
func (m *Metrics) IncRendererFailures(category string) {
	m.rendererFailuresTotal.WithLabelValues(category).Inc()
}

// IncPipelinesPrepared increments the prepared pipelines counter.
func (m *Metrics) IncPipelinesPrepared() {
	m.pipelinesPreparedTotal.Inc()
}

// SetRegisteredRenderers sets the renderer gauge for category.
func (m *Metrics) SetRegisteredRenderers(category string, n int) {
	m.registeredRenderers.WithLabelValues(category).Set(float64(n))
}

// SetRegisteredSources sets the builder entries gauge.
func (m *Metrics) SetRegisteredSources(n int) {
	m.registeredSources.Set(float64(n))
}

// Registry exposes the underlying Prometheus registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
