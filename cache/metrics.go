package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessly_cache_hits_total",
		Help: "Reads served from the query cache.",
	}, []string{"kind"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessly_cache_misses_total",
		Help: "Reads that had to wait for a fetch.",
	}, []string{"kind"})
	cacheFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessly_cache_fetches_total",
		Help: "Fetcher invocations after deduplication.",
	}, []string{"kind"})
	cacheFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessly_cache_fetch_errors_total",
		Help: "Fetcher invocations that returned an error.",
	}, []string{"kind"})
	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessly_cache_invalidations_total",
		Help: "Entries marked invalid by mutations.",
	}, []string{"kind"})
	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessly_mutations_total",
		Help: "Mutations by name and outcome.",
	}, []string{"mutation", "level"})
)
