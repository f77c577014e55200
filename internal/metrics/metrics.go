// Package metrics holds the Prometheus collectors exported by unifaid.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	Predictions     *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	SinkFailures    *prometheus.CounterVec
	GatewayRequests *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a private registry together with the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifai_predictions_total",
			Help: "Predictions scored, by module and risk level.",
		}, []string{"module", "risk_level"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifai_prediction_rejections_total",
			Help: "Prediction requests rejected before scoring, by module and reason.",
		}, []string{"module", "reason"}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifai_sink_failures_total",
			Help: "Best-effort sink writes that failed, by sink.",
		}, []string{"sink"}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifai_gateway_requests_total",
			Help: "Calls to the model gateway, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unifai_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		m.Predictions, m.Rejections, m.SinkFailures, m.GatewayRequests, m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
