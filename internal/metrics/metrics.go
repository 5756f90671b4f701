// Package metrics provides Prometheus collectors for Agora.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agora"

// OutcomeOK labels a successful operation.
const OutcomeOK = "ok"

// Metrics holds every Agora collector, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	operations          *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	identityResolutions *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
}

// New creates the collectors and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations resolved, by operation name and outcome (ok or error code).",
		}, []string{"operation", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent resolving a single operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		identityResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Caller identity resolutions, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.operationDuration,
		m.identityResolutions,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordOperation counts one operation and observes its duration.
func (m *Metrics) RecordOperation(operation, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordIdentityResolution counts one identity resolution.
func (m *Metrics) RecordIdentityResolution(result string) {
	m.identityResolutions.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
