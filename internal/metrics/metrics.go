// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "movie_recommender"

var (
	registerOnce sync.Once

	matchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "title_matches_total",
		Help:      "Fuzzy title resolutions by outcome (resolved, not_found)",
	}, []string{"outcome"})
	recommendationsServed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_served_total",
		Help:      "Total number of recommendation lists produced",
	})
	genreBrowses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "genre_browses_total",
		Help:      "Genre browse requests by sort key",
	}, []string{"sort"})

	posterCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poster_cache_lookups_total",
		Help:      "Poster cache lookups by result (hit, miss)",
	}, []string{"result"})
	posterResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poster_resolutions_total",
		Help:      "Poster resolutions by outcome (found, placeholder, unavailable)",
	}, []string{"outcome"})
	posterDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poster_resolution_duration_seconds",
		Help:      "Histogram of poster resolution durations, cache hits included",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 12), // ~1ms up to ~1min
	})
	posterCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "poster_cache_entries",
		Help:      "Current number of persisted poster cache entries",
	})

	tmdbRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tmdb_requests_total",
		Help:      "Requests to the metadata API by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	circuitBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	catalogMovies = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_movies",
		Help:      "Number of movies in the loaded catalog",
	})

	operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Background operations by type and final status",
	}, []string{"type", "status"})
	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Histogram of background operation durations",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"type"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(matchResults, recommendationsServed, genreBrowses,
			posterCacheLookups, posterResolutions, posterDuration, posterCacheEntries,
			tmdbRequests, circuitBreakerState, catalogMovies,
			operationsTotal, operationDuration)
	})
}

// Recommendation flow
func IncMatch(outcome string)       { matchResults.WithLabelValues(outcome).Inc() }
func IncRecommendations()           { recommendationsServed.Inc() }
func IncGenreBrowse(sortKey string) { genreBrowses.WithLabelValues(sortKey).Inc() }
func SetCatalogMovies(n int)        { catalogMovies.Set(float64(n)) }

// Posters
func IncPosterCacheHit()                 { posterCacheLookups.WithLabelValues("hit").Inc() }
func IncPosterCacheMiss()                { posterCacheLookups.WithLabelValues("miss").Inc() }
func IncPosterResolution(outcome string) { posterResolutions.WithLabelValues(outcome).Inc() }
func SetPosterCacheEntries(n int)        { posterCacheEntries.Set(float64(n)) }
func ObservePosterDuration(d time.Duration) {
	posterDuration.Observe(d.Seconds())
}

// Metadata API
func IncTMDBRequest(endpoint, outcome string) { tmdbRequests.WithLabelValues(endpoint, outcome).Inc() }
func SetCircuitBreakerState(name string, state float64) {
	circuitBreakerState.WithLabelValues(name).Set(state)
}

// Operations
func IncOperation(opType, status string) { operationsTotal.WithLabelValues(opType, status).Inc() }
func ObserveOperationDuration(opType string, d time.Duration) {
	operationDuration.WithLabelValues(opType).Observe(d.Seconds())
}
