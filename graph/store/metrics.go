package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_request_latency_milliseconds",
			Help:    "Captures RTT of graph store requests in milliseconds, by operation.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		},
		[]string{"operation"},
	)
	storeRequestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_request_failures_total",
			Help: "Total number of failed graph store requests, by operation.",
		},
		[]string{"operation"},
	)
)
