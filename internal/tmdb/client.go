// file: internal/tmdb/client.go
// version: 1.0.0
// guid: cca218d4-aa5f-428f-af0c-41619f329c53

// Package tmdb is a minimal client for The Movie Database search and
// configuration endpoints.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/metrics"
)

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const breakerName = "tmdb-api"

var (
	// ErrMissingAPIKey is returned before any request when no key is configured.
	ErrMissingAPIKey = errors.New("tmdb api key not configured")
	// ErrUnauthorized is returned for HTTP 401 responses.
	ErrUnauthorized = errors.New("tmdb rejected the api key")
	// ErrTransport wraps connection-level failures (dial, TLS, timeout, reset).
	ErrTransport = errors.New("tmdb transport failure")
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("tmdb circuit breaker open")
	// ErrDecode wraps malformed response bodies.
	ErrDecode = errors.New("tmdb response could not be decoded")
)

// StatusError is a well-formed non-success HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb returned status %d: %s", e.StatusCode, e.Body)
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL string
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
	// BreakerFailures is the number of consecutive transport failures that
	// opens the circuit.
	BreakerFailures uint32
	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
}

// Client talks to the TMDB v3 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a client. The base URL falls back to TMDB_BASE_URL and
// then DefaultBaseURL.
func NewClient(apiKey string, opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("TMDB_BASE_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	metrics.SetCircuitBreakerState(breakerName, 0)
	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// only connection-level failures say anything about availability
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrTransport)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.SetCircuitBreakerState(name, stateValue(to))
		},
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		breaker:    breaker,
	}
}

// HasAPIKey reports whether a key is configured
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// BaseURL returns the API root in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs one GET attempt and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, ErrUnauthorized
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.IncTMDBRequest(endpoint, "rejected")
			return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.IncTMDBRequest(endpoint, outcomeLabel(err))
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.IncTMDBRequest(endpoint, "decode_error")
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	metrics.IncTMDBRequest(endpoint, "ok")
	return nil
}

func outcomeLabel(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &statusErr):
		return "status_error"
	default:
		return "error"
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
