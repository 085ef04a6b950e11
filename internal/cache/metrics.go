package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits tracks cache hits by layer ("response", "method")
	Hits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoapi_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"},
	)

	// Misses tracks cache misses by layer
	Misses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoapi_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	// Errors tracks cache operation errors
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoapi_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set"
	)
)
