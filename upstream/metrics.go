package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_latency_milliseconds",
			Help:    "Captures RTT of upstream provider fetches in milliseconds, by fetcher.",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"fetcher"},
	)
	upstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetches_total",
			Help: "Total number of fetches dispatched to upstream providers, by fetcher and result.",
		},
		[]string{"fetcher", "result"},
	)
	upstreamThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetches_throttled_total",
			Help: "Total number of fetches delayed by the per-provider rate limit, by fetcher.",
		},
		[]string{"fetcher"},
	)
	dispatchFrontierSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_frontier_targets",
			Help: "Number of targets in the frontier of the most recent dispatch round.",
		},
	)
	dispatchCrawls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_crawls_total",
			Help: "Total number of crawls started by the dispatcher.",
		},
	)
)
