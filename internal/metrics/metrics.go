package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GraphRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "prom_grapher_requests_total", Help: "Graph requests by outcome"},
		[]string{"status"},
	)
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prom_grapher_backend_query_seconds",
			Help:    "Range query duration against the Prometheus backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	RenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prom_grapher_render_seconds",
			Help:    "PNG render duration",
			Buckets: prometheus.DefBuckets,
		},
	)
	SeriesExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "prom_grapher_series_extracted_total", Help: "Plot series extracted from backend responses"},
	)
	BackendUp = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "prom_grapher_backend_up", Help: "Default backend healthy (1) or not (0)"},
	)
)

func MustRegister() {
	prometheus.MustRegister(GraphRequests, QueryDuration, RenderDuration, SeriesExtracted, BackendUp)
}
func Handler() http.Handler { return promhttp.Handler() }
