// Package metrics declares the Prometheus collectors the API exports on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "code"},
	)

	RecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_written_total",
			Help: "Successful store writes by entity and operation",
		},
		[]string{"entity", "operation"},
	)
)

// Instrument times h under the given route pattern.
func Instrument(route string, h http.Handler) http.Handler {
	obs := APIRequestDuration.MustCurryWith(prometheus.Labels{"route": route})
	return promhttp.InstrumentHandlerDuration(obs, h)
}

// Written counts one successful write.
func Written(entity, operation string) {
	RecordsWritten.WithLabelValues(entity, operation).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
