// Package metrics exposes Prometheus counters for record operations and the
// HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roster", Name: "operations_total", Help: "Record operations by entity, operation and result",
		},
		[]string{"entity", "op", "result"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roster", Name: "http_requests_total", Help: "HTTP API requests by route and status code",
		},
		[]string{"route", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roster", Name: "http_request_seconds", Help: "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	AuditFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roster", Name: "audit_write_failures_total", Help: "Audit entries that could not be written",
	})
)

func init() {
	prometheus.MustRegister(Operations, HTTPRequests, HTTPDuration, AuditFailures)
}

func Handler() http.Handler { return promhttp.Handler() }

// ObserveOperation counts one record operation. result is "ok" or an error
// kind such as "validation".
func ObserveOperation(entity, op, result string) {
	Operations.WithLabelValues(entity, op, result).Inc()
}

// ObserveRequest records one HTTP request.
func ObserveRequest(route, code string, d time.Duration) {
	HTTPRequests.WithLabelValues(route, code).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
