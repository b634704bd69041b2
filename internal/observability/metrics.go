package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_fomento_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// CacheHits tracks cache hits/misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_fomento_cache_hits_total",
			Help: "Number of cache hits",
		},
		[]string{"operation"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_fomento_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// Registrations tracks proponente registrations by tipo and outcome
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_fomento_registrations_total",
			Help: "Number of proponente registration attempts",
		},
		[]string{"tipo", "status"},
	)

	// StatisticsComputations tracks dashboard statistics requests
	StatisticsComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_fomento_statistics_computations_total",
			Help: "Number of city statistics computations",
		},
		[]string{"city"},
	)

	// EmailsSent tracks e-mail notifications by outcome
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_fomento_emails_total",
			Help: "Number of e-mail notifications",
		},
		[]string{"status"},
	)

	// ActiveDrafts tracks registration drafts held in memory
	ActiveDrafts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_fomento_active_drafts",
			Help: "Number of registration drafts in memory",
		},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_fomento_active_connections",
			Help: "Number of active connections",
		},
	)
)
