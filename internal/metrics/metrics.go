package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "visibility_http_request_duration_seconds",
			Help: "Duration of API requests in seconds",
		},
		[]string{"route"},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_search_queries_total",
			Help: "Total number of search queries by outcome",
		},
		[]string{"outcome"},
	)

	ReportsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visibility_reports_generated_total",
			Help: "Total number of visibility reports generated",
		},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_alerts_sent_total",
			Help: "Total number of visibility alerts sent",
		},
		[]string{"type"},
	)

	BrandVisibility = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "visibility_brand_percent",
			Help: "Visibility of each brand in the last report",
		},
		[]string{"brand"},
	)
)
