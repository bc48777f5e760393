package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_hits_total",
			Help: "Cache hits by serving tier",
		},
		[]string{"tier"},
	)

	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_cache_misses_total",
			Help: "Gets that missed every tier",
		},
	)

	cacheBackfills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_backfills_total",
			Help: "Values re-written into a higher tier after a lower-tier hit",
		},
		[]string{"tier"},
	)

	tierUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_tier_unavailable_total",
			Help: "Tier operations that failed due to unavailability",
		},
		[]string{"tier", "op"},
	)

	rateLimitDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_denials_total",
			Help: "Rate-limited actions by scope",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(cacheBackfills)
	prometheus.MustRegister(tierUnavailable)
	prometheus.MustRegister(rateLimitDenials)
}

// GetCacheHits returns the cache hit counter for service wiring.
func GetCacheHits() *prometheus.CounterVec { return cacheHits }

// GetCacheMisses returns the cache miss counter for service wiring.
func GetCacheMisses() prometheus.Counter { return cacheMisses }

// GetCacheBackfills returns the backfill counter for service wiring.
func GetCacheBackfills() *prometheus.CounterVec { return cacheBackfills }

// GetTierUnavailable returns the tier unavailability counter for service wiring.
func GetTierUnavailable() *prometheus.CounterVec { return tierUnavailable }

// GetRateLimitDenials returns the denial counter for service wiring.
func GetRateLimitDenials() *prometheus.CounterVec { return rateLimitDenials }
