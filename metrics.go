package hoaxcheck

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoaxcheck_fetch_attempts_total",
		Help: "HTTP fetch attempts, including retries.",
	})
	fetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoaxcheck_fetch_retries_total",
		Help: "Fetch attempts that failed and were retried.",
	})
	fetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoaxcheck_fetch_failures_total",
		Help: "Fetches that exhausted their retry budget or failed permanently.",
	})
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoaxcheck_cache_hits_total",
		Help: "Extraction cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoaxcheck_cache_misses_total",
		Help: "Extraction cache misses.",
	})
	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoaxcheck_extractions_total",
		Help: "Completed extractions by outcome.",
	}, []string{"outcome"})
	extractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hoaxcheck_extraction_duration_seconds",
		Help:    "End-to-end extraction latency (fetch through clean).",
		Buckets: prometheus.DefBuckets,
	})
)
