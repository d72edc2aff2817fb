package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	identityCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_identity_cache_hits_total",
			Help: "Total number of identity lookups served from the graph store.",
		},
	)
	identityCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_identity_cache_misses_total",
			Help: "Total number of identity lookups that required a synchronous upstream fetch.",
		},
	)
	identityCacheOutdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_identity_cache_outdated_total",
			Help: "Total number of identity lookups served stale while a refresh was scheduled.",
		},
	)
	refreshEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_jobs_enqueued_total",
			Help: "Total number of refresh jobs accepted by the background refresher.",
		},
	)
	refreshDebounced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_jobs_debounced_total",
			Help: "Total number of refresh jobs dropped because the vertex was already scheduled.",
		},
	)
	refreshFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_jobs_failed_total",
			Help: "Total number of refresh jobs that failed to delete or refetch a vertex.",
		},
	)
	loaderBatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loader_batch_size",
			Help:    "Number of identity ids coalesced into one batch store read.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		},
	)
)
