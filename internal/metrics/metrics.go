package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storyhub_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyhub_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storyhub_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Access control metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_auth_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"status"},
	)

	GuardDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_guard_denials_total",
			Help: "Requests denied by the authorization guard, by reason",
		},
		[]string{"reason"},
	)
)

// Engagement metrics
var (
	FavoriteTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_favorite_toggles_total",
			Help: "Favorite toggles by resulting state",
		},
		[]string{"result"},
	)

	VisitsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storyhub_album_visits_recorded_total",
			Help: "Album visits written to the visit log",
		},
	)
)

// Content gauges, refreshed by the Collector
var (
	ContentTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storyhub_content_total",
			Help: "Current number of rows per entity kind",
		},
		[]string{"kind"},
	)
)

// AppInfo exposes build information as labels.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "storyhub_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
