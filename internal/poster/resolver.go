// file: internal/poster/resolver.go
// version: 1.1.0
// guid: 7c3e1a95-4d28-4f6b-a0e7-2b9d58c14f63

// Package poster resolves movie titles to poster image URLs through TMDB,
// persisting every answer so a title is looked up at most once.
package poster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdfalk/movie-recommender/internal/cache"
	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/metrics"
	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/jdfalk/movie-recommender/internal/postercache"
	"github.com/jdfalk/movie-recommender/internal/tmdb"
)

// Placeholder is returned, and cached, when no poster could be found.
const Placeholder = "https://via.placeholder.com/500x750?text=No+Poster"

const imageConfigKey = "images"

var errThrottled = errors.New("poster fetch throttle wait aborted")

// Searcher is the subset of the TMDB client the resolver needs.
type Searcher interface {
	Configuration(ctx context.Context) (*tmdb.ImageConfig, error)
	SearchMovie(ctx context.Context, title string) ([]tmdb.SearchResult, error)
}

// Options tunes fetching. Zero values select the defaults.
type Options struct {
	// MaxRetries is the number of attempts per external call.
	MaxRetries int
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
	// AttemptTimeout bounds one attempt.
	AttemptTimeout time.Duration
	// MinInterval is the minimum spacing between external requests.
	MinInterval time.Duration
	// Language is the preferred original_language tag.
	Language string
	// Size is the preferred poster size.
	Size string
	// ConfigTTL is how long the image configuration is reused. Zero keeps
	// it for the life of the resolver.
	ConfigTTL time.Duration
}

// DefaultOptions returns the stock fetch policy.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		AttemptTimeout: 10 * time.Second,
		MinInterval:    300 * time.Millisecond,
		Language:       "hi",
		Size:           "w500",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = d.RetryDelay
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = d.AttemptTimeout
	}
	if o.MinInterval < 0 {
		o.MinInterval = 0
	}
	if o.Language == "" {
		o.Language = d.Language
	}
	if o.Size == "" {
		o.Size = d.Size
	}
	return o
}

// Resolver looks up posters, consulting the store before the network.
type Resolver struct {
	client  Searcher
	store   postercache.Store
	opts    Options
	limiter *rate.Limiter
	images  *cache.Cache[*tmdb.ImageConfig]

	configErrOnce sync.Once
}

// NewResolver wires a resolver. A MinInterval of zero disables throttling.
func NewResolver(client Searcher, store postercache.Store, opts Options) *Resolver {
	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	metrics.SetPosterCacheEntries(store.Len())
	return &Resolver{
		client:  client,
		store:   store,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		images:  cache.New[*tmdb.ImageConfig](opts.ConfigTTL),
	}
}

// Options returns the effective options.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve returns a poster URL for title, or Placeholder. It never fails;
// errors are logged and downgraded.
func (r *Resolver) Resolve(ctx context.Context, title string, year *int) string {
	start := time.Now()
	defer func() { metrics.ObservePosterDuration(time.Since(start)) }()

	if url, ok := r.store.Get(title); ok {
		metrics.IncPosterCacheHit()
		return url
	}
	metrics.IncPosterCacheMiss()

	url, err := r.fetch(ctx, title, year)
	if err != nil && (ctx.Err() != nil || !persistable(err)) {
		r.logFailure(title, err)
		metrics.IncPosterResolution("unavailable")
		return Placeholder
	}
	if err != nil {
		r.logFailure(title, err)
	}

	if url == Placeholder {
		metrics.IncPosterResolution("placeholder")
	} else {
		metrics.IncPosterResolution("found")
	}
	if perr := r.store.Put(title, url); perr != nil {
		logging.Warn().Err(perr).Str("title", title).Msg("failed to persist poster")
	}
	metrics.SetPosterCacheEntries(r.store.Len())
	return url
}

// fetch searches TMDB and selects a poster. A nil error with Placeholder
// means the search succeeded but nothing had a poster.
func (r *Resolver) fetch(ctx context.Context, title string, year *int) (string, error) {
	results, err := withRetry(ctx, r, "search", func(ctx context.Context) ([]tmdb.SearchResult, error) {
		return r.client.SearchMovie(ctx, title)
	})
	if err != nil {
		return Placeholder, err
	}

	candidate, ok := selectCandidate(results, year, r.opts.Language)
	if !ok {
		logging.Debug().Str("title", title).Int("results", len(results)).Msg("no poster among search results")
		return Placeholder, nil
	}

	images, err := r.images.Fetch(imageConfigKey, func() (*tmdb.ImageConfig, error) {
		return withRetry(ctx, r, "configuration", r.client.Configuration)
	})
	if err != nil {
		return Placeholder, &configError{err: err}
	}
	return images.PosterURL(r.opts.Size, candidate.PosterPath), nil
}

// selectCandidate prefers a result released in year (when given) in the
// preferred language, then any result with a poster.
func selectCandidate(results []tmdb.SearchResult, year *int, language string) (tmdb.SearchResult, bool) {
	for _, res := range results {
		if res.PosterPath == "" || res.OriginalLanguage != language {
			continue
		}
		if year == nil || res.ReleasedIn(*year) {
			return res, true
		}
	}
	for _, res := range results {
		if res.PosterPath != "" {
			return res, true
		}
	}
	return tmdb.SearchResult{}, false
}

// withRetry runs call up to MaxRetries times, pacing through the limiter and
// retrying only connection-level failures.
func withRetry[T any](ctx context.Context, r *Resolver, op string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= r.opts.MaxRetries; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("%w: %w", errThrottled, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.opts.AttemptTimeout)
		v, err := call(attemptCtx)
		cancel()
		if err == nil {
			return v, nil
		}
		// a breaker tripped by this lookup's own failures ends the retries
		if errors.Is(err, tmdb.ErrCircuitOpen) && errors.Is(lastErr, tmdb.ErrTransport) {
			return zero, lastErr
		}
		lastErr = err
		if !errors.Is(err, tmdb.ErrTransport) || ctx.Err() != nil {
			return zero, err
		}

		logging.Warn().Err(err).Str("op", op).Int("attempt", attempt).Int("max", r.opts.MaxRetries).
			Msg("tmdb request failed")
		if attempt < r.opts.MaxRetries {
			if err := sleep(ctx, r.opts.RetryDelay); err != nil {
				return zero, err
			}
		}
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// configError marks failures fetching the image configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return "image configuration unavailable: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// persistable reports whether a failed lookup should still cache the
// placeholder. Credential problems, configuration failures, a breaker that
// was already open and an interrupted throttle wait are not cached.
func persistable(err error) bool {
	var cfgErr *configError
	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, tmdb.ErrMissingAPIKey),
		errors.Is(err, tmdb.ErrUnauthorized),
		errors.Is(err, tmdb.ErrCircuitOpen),
		errors.Is(err, errThrottled):
		return false
	}
	return true
}

func (r *Resolver) logFailure(title string, err error) {
	var cfgErr *configError
	if errors.Is(err, tmdb.ErrMissingAPIKey) || errors.Is(err, tmdb.ErrUnauthorized) || errors.As(err, &cfgErr) {
		logged := false
		r.configErrOnce.Do(func() {
			logging.Error().Err(err).Msg("poster lookups disabled: check TMDB_API_KEY and connectivity")
			logged = true
		})
		if !logged {
			logging.Debug().Err(err).Str("title", title).Msg("poster lookup skipped")
		}
		return
	}
	logging.Warn().Err(err).Str("title", title).Msg("poster lookup failed, using placeholder")
}

// Warm resolves posters for movies one after another, honouring the
// throttle. progress is called after each movie. It returns the number of
// real posters, cached or fetched.
func (r *Resolver) Warm(ctx context.Context, movies []models.Movie, progress func(models.Movie, string)) int {
	found := 0
	for _, m := range movies {
		if ctx.Err() != nil {
			break
		}
		url := r.Resolve(ctx, m.Name, m.Year)
		if url != Placeholder {
			found++
		}
		if progress != nil {
			progress(m, url)
		}
	}
	return found
}
