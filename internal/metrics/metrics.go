package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfapi_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shelfapi_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfapi_upstream_requests_total",
		Help: "Calls made to the book catalog service by operation and outcome",
	}, []string{"op", "outcome"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shelfapi_upstream_request_duration_seconds",
		Help:    "Latency of calls to the book catalog service",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"op"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shelfapi_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfapi_searches_total",
		Help: "Search calls by outcome",
	}, []string{"outcome"})

	SearchPagesFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shelfapi_search_pages_fetched",
		Help:    "Upstream page requests issued per search",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	})

	DetailFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shelfapi_search_detail_failures_total",
		Help: "Candidates dropped because their detail fetch failed",
	})

	DetailCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfapi_detail_cache_lookups_total",
		Help: "Detail cache lookups by result",
	}, []string{"result"})
)
