package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every fleet collector plus the Go runtime ones.
var Registry = prometheus.NewRegistry()

var (
	// DigestRunsTotal counts digest runs by result: sent, skipped, failed.
	DigestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_digest_runs_total",
			Help: "Total number of digest runs by result.",
		},
		[]string{"result"},
	)

	// DigestEvents is the event count of the last digest built.
	DigestEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_digest_events",
			Help: "Number of due events in the last digest built.",
		},
	)

	// ActiveAlerts is the alert count of the last dashboard aggregation.
	ActiveAlerts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleet_active_alerts",
			Help: "Number of deadline alerts by severity at the last aggregation.",
		},
		[]string{"severity"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleet_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		DigestRunsTotal,
		DigestEvents,
		ActiveAlerts,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
