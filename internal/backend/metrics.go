package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend gateway metrics
var (
	// Requests by operation and HTTP status ("error" on transport failure)
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of backend requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Duration of backend requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	idCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_id_cache_lookups_total",
			Help: "Total number of user id cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)
)
