// file: internal/metrics/metrics_test.go
// version: 2.0.0
// guid: 7a8b9c0d-1e2f-3a4b-5c6d-7e8f9a0b1c2d

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIdempotent(t *testing.T) {
	Register()
	Register()
}

func TestIncMatch(t *testing.T) {
	before := testutil.ToFloat64(matchResults.WithLabelValues("resolved"))
	IncMatch("resolved")
	assert.Equal(t, before+1, testutil.ToFloat64(matchResults.WithLabelValues("resolved")))
}

func TestPosterCacheCounters(t *testing.T) {
	hits := testutil.ToFloat64(posterCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(posterCacheLookups.WithLabelValues("miss"))
	IncPosterCacheHit()
	IncPosterCacheMiss()
	IncPosterCacheMiss()
	assert.Equal(t, hits+1, testutil.ToFloat64(posterCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(posterCacheLookups.WithLabelValues("miss")))
}

func TestGauges(t *testing.T) {
	SetPosterCacheEntries(12)
	assert.Equal(t, 12.0, testutil.ToFloat64(posterCacheEntries))

	SetCatalogMovies(10)
	assert.Equal(t, 10.0, testutil.ToFloat64(catalogMovies))

	SetCircuitBreakerState("tmdb", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("tmdb")))
}

func TestMetricsSetters(t *testing.T) {
	IncRecommendations()
	IncGenreBrowse("rating")
	IncPosterResolution("found")
	IncTMDBRequest("search", "ok")
	ObservePosterDuration(25 * time.Millisecond)
}

func TestOperationCounters(t *testing.T) {
	before := testutil.ToFloat64(operationsTotal.WithLabelValues("poster_warm", "completed"))
	IncOperation("poster_warm", "completed")
	assert.Equal(t, before+1, testutil.ToFloat64(operationsTotal.WithLabelValues("poster_warm", "completed")))
	ObserveOperationDuration("poster_warm", time.Second)
}
