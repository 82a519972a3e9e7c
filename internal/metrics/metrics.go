// Package metrics defines the prometheus instruments shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store search metrics
var (
	// SearchesTotal tracks store searches by outcome (success/empty/error)
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_searches_total",
			Help: "Total store searches by outcome",
		},
		[]string{"outcome"},
	)

	// SearchDuration tracks end-to-end search latency in seconds
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_search_duration_seconds",
			Help:    "Store search duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// ProviderRequestsTotal tracks location provider calls by status
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_provider_requests_total",
			Help: "Total location provider requests by status",
		},
		[]string{"status"},
	)

	// PlaceCacheTotal tracks place cache lookups by result (hit/miss/error)
	PlaceCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "place_cache_lookups_total",
			Help: "Place cache lookups by result",
		},
		[]string{"result"},
	)
)

// Check-in metrics
var (
	// CheckInsTotal tracks check-in attempts by outcome
	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Total check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	// NotificationPostsTotal tracks sink post calls by status
	NotificationPostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_posts_total",
			Help: "Total notification posts by status",
		},
		[]string{"status"},
	)

	// NotificationDeleteFailures counts tolerated failures deleting a stale notification
	NotificationDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_delete_failures_total",
			Help: "Total tolerated failures deleting a previous check-in notification",
		},
	)
)

// SessionsCreatedTotal counts issued portal sessions
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sessions_created_total",
		Help: "Total portal sessions issued",
	},
)

// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
	},
	[]string{"component"},
)
