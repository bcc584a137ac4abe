// file: internal/testutil/mock_tmdb.go
// version: 1.0.0
// guid: c3d4e5f6-a7b8-9012-cdef-345678901abc

package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// TMDBConfigurationResponse is a standard /configuration body.
const TMDBConfigurationResponse = `{
	"images": {
		"base_url": "http://image.tmdb.org/t/p/",
		"secure_base_url": "https://image.tmdb.org/t/p/",
		"poster_sizes": ["w92", "w185", "w500", "original"]
	}
}`

// TMDBSholayResponse has a Hindi 1975 match plus an unrelated remake.
const TMDBSholayResponse = `{
	"page": 1,
	"results": [
		{"id": 10, "title": "Sholay 3D", "poster_path": "/remake.jpg", "release_date": "2014-01-03", "original_language": "hi"},
		{"id": 11, "title": "Sholay", "poster_path": "/sholay.jpg", "release_date": "1975-08-15", "original_language": "hi"}
	],
	"total_results": 2
}`

// TMDBEmptyResponse returns no results.
const TMDBEmptyResponse = `{"page":1,"results":[],"total_results":0}`

// TMDBServer mimics the TMDB configuration and search endpoints and counts
// the requests it receives.
type TMDBServer struct {
	*httptest.Server

	mu       sync.Mutex
	searches map[string]string
	status   int

	ConfigCalls atomic.Int32
	SearchCalls atomic.Int32
}

// MockTMDBServer starts a fake TMDB API. searches maps the exact query
// parameter to a response body; unknown queries get TMDBEmptyResponse.
func MockTMDBServer(t *testing.T, searches map[string]string) *TMDBServer {
	t.Helper()
	s := &TMDBServer{searches: searches}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetStatus forces every response to the given status code (0 restores
// normal behaviour).
func (s *TMDBServer) SetStatus(code int) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

func (s *TMDBServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	if r.URL.Query().Get("api_key") == "" {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/configuration":
		s.ConfigCalls.Add(1)
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(TMDBConfigurationResponse))
	case "/search/movie":
		s.SearchCalls.Add(1)
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"status_message":"forced"}`))
			return
		}
		body, ok := s.searches[r.URL.Query().Get("query")]
		if !ok {
			body = TMDBEmptyResponse
		}
		_, _ = w.Write([]byte(body))
	default:
		http.NotFound(w, r)
	}
}

// UnreachableURL returns the URL of a server that has already been shut
// down, so every request fails at the connection level.
func UnreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
