// Package metrics holds Prometheus instruments that are used across the
// site.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests served, by method, route pattern, and status.",
		}, []string{"method", "route", "status"})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time from pipeline entry to response, by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	FunnelTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "error_funnel_total",
			Help: "Errors normalised by the error funnel, by status and kind.",
		}, []string{"status", "kind"})

	RenderFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "render_fallback_total",
			Help: "Error pages that fell back to the inline message.",
		})

	LiveReloadClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "livereload_clients",
			Help: "Browsers currently connected to the live-reload channel.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		FunnelTotal,
		RenderFallbackTotal,
		LiveReloadClients,
	)
}
