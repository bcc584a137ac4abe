// file: cmd/app.go
// version: 1.1.0
// guid: 2f8d6c41-97a3-4e0b-b5d2-6c1e9a7f3b28

package cmd

import (
	"errors"
	"fmt"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/config"
	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/postercache"
	"github.com/jdfalk/movie-recommender/internal/service"
	"github.com/jdfalk/movie-recommender/internal/tmdb"
)

// app is everything a command needs, built once from the configuration.
type app struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	svc      *service.Recommender
	client   *tmdb.Client
	store    postercache.Store
	resolver *poster.Resolver // nil when posters are disabled
}

// newApp validates cfg, loads the catalog and, when enabled, opens the
// poster cache and builds the resolver.
func newApp(cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c, err := catalog.LoadFiles(cfg.MoviesPath, cfg.SimilarityPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	a := &app{cfg: cfg, catalog: c}

	var posters service.PosterResolver
	if cfg.PosterEnabled {
		if err := a.openPosters(); err != nil {
			return nil, err
		}
		posters = a.resolver
	}

	a.svc = service.New(c, posters, service.Options{
		Threshold:   cfg.MatchThreshold,
		Count:       cfg.RecommendCount,
		BrowseLimit: cfg.BrowseLimit,
	})
	return a, nil
}

func (a *app) openPosters() error {
	store, err := postercache.Open(a.cfg.PosterCacheType, a.cfg.PosterCachePath, a.cfg.EnableSQLite)
	if err != nil {
		return fmt.Errorf("failed to open poster cache: %w", err)
	}
	a.store = store

	a.client = tmdb.NewClient(a.cfg.TMDBAPIKey, tmdb.Options{
		BaseURL:         a.cfg.TMDBBaseURL,
		Timeout:         a.cfg.TMDBTimeout,
		BreakerFailures: uint32(max(a.cfg.TMDBBreakerFailures, 0)),
		BreakerCooldown: a.cfg.TMDBBreakerCooldown,
	})
	if !a.client.HasAPIKey() {
		logging.Warn().Msg("TMDB_API_KEY is not set; posters will fall back to the placeholder")
	}

	a.resolver = poster.NewResolver(a.client, store, poster.Options{
		MaxRetries:     a.cfg.PosterMaxRetries,
		RetryDelay:     a.cfg.PosterRetryDelay,
		AttemptTimeout: a.cfg.TMDBTimeout,
		MinInterval:    a.cfg.PosterMinInterval,
		Language:       a.cfg.PosterLanguage,
		Size:           a.cfg.PosterSize,
		ConfigTTL:      a.cfg.PosterConfigTTL,
	})
	logging.Debug().Str("type", a.cfg.PosterCacheType).Str("path", a.cfg.PosterCachePath).
		Int("entries", store.Len()).Msg("poster cache opened")
	return nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

var errPostersDisabled = errors.New("poster lookups are disabled (run with --posters)")

func (a *app) requirePosters() error {
	if a.resolver == nil {
		return errPostersDisabled
	}
	return nil
}
