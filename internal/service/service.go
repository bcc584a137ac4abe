// file: internal/service/service.go
// version: 1.0.0
// guid: 5b0d7e34-a912-4c6f-b85e-3f1c28d9e067

// Package service ties matching, ranking, browsing and posters together for
// the CLI and HTTP front ends.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jdfalk/movie-recommender/internal/browse"
	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/matcher"
	"github.com/jdfalk/movie-recommender/internal/metrics"
	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/jdfalk/movie-recommender/internal/recommend"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("movie not found")

// NotFoundError reports a query that matched no catalog title closely
// enough, with titles the user may have meant.
type NotFoundError struct {
	Query       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("movie %q not found", e.Query)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PosterResolver resolves a title to an image URL. It must not fail.
type PosterResolver interface {
	Resolve(ctx context.Context, title string, year *int) string
}

// Item is one movie in a response.
type Item struct {
	Movie     models.Movie `json:"movie"`
	Score     float64      `json:"score,omitempty"`
	PosterURL string       `json:"poster_url,omitempty"`
}

// Result is a recommendation response.
type Result struct {
	Query string `json:"query"`
	Match string `json:"match"`
	Score int    `json:"match_score"`
	Items []Item `json:"recommendations"`
}

// Options configures New. Zero values select the package defaults.
type Options struct {
	Threshold   int
	Count       int
	BrowseLimit int
	Suggestions int
}

// Recommender is safe for concurrent use once built.
type Recommender struct {
	catalog     *catalog.Catalog
	matcher     *matcher.Matcher
	engine      *recommend.Engine
	browser     *browse.Browser
	posters     PosterResolver
	suggestions int
}

// New builds a Recommender over c. posters may be nil, in which case no
// poster URLs are attached.
func New(c *catalog.Catalog, posters PosterResolver, opts Options) *Recommender {
	if opts.Suggestions <= 0 {
		opts.Suggestions = 5
	}
	metrics.SetCatalogMovies(c.Len())
	return &Recommender{
		catalog:     c,
		matcher:     matcher.New(opts.Threshold),
		engine:      recommend.NewEngine(c, opts.Count),
		browser:     browse.New(c, opts.BrowseLimit),
		posters:     posters,
		suggestions: opts.Suggestions,
	}
}

// Catalog returns the underlying catalog.
func (r *Recommender) Catalog() *catalog.Catalog { return r.catalog }

// Recommend resolves query to a catalog title and returns its nearest
// neighbours with posters.
func (r *Recommender) Recommend(ctx context.Context, query string) (*Result, error) {
	titles := r.catalog.Titles()
	match, err := r.matcher.Resolve(query, titles)
	if err != nil {
		metrics.IncMatch("not_found")
		logging.Debug().Str("query", query).Int("best_score", match.Score).Msg("no title above threshold")
		return nil, &NotFoundError{Query: query, Suggestions: r.matcher.Suggest(query, titles, r.suggestions)}
	}
	metrics.IncMatch("resolved")

	scored, err := r.engine.Scores(match.Title)
	if err != nil {
		// matcher and catalog disagree; should not happen
		if errors.Is(err, recommend.ErrNotFound) {
			return nil, &NotFoundError{Query: query}
		}
		return nil, fmt.Errorf("ranking %q: %w", match.Title, err)
	}

	items := make([]Item, len(scored))
	for i, s := range scored {
		items[i] = Item{Movie: s.Movie, Score: s.Score, PosterURL: r.poster(ctx, s.Movie)}
	}
	metrics.IncRecommendations()
	logging.Info().Str("query", query).Str("match", match.Title).Int("score", match.Score).
		Int("results", len(items)).Msg("recommendations served")

	return &Result{Query: query, Match: match.Title, Score: match.Score, Items: items}, nil
}

// Browse lists a genre in the order named by sortKey, with posters.
func (r *Recommender) Browse(ctx context.Context, genre, sortKey string) ([]Item, error) {
	key, err := browse.ParseSortKey(sortKey)
	if err != nil {
		return nil, err
	}
	movies := r.browser.Browse(genre, key)
	items := make([]Item, len(movies))
	for i, m := range movies {
		items[i] = Item{Movie: m, PosterURL: r.poster(ctx, m)}
	}
	return items, nil
}

// Genres returns the sorted distinct genres.
func (r *Recommender) Genres() []string {
	return r.browser.Genres()
}

// Suggest returns up to limit titles resembling query.
func (r *Recommender) Suggest(query string, limit int) []string {
	if limit <= 0 {
		limit = r.suggestions
	}
	return r.matcher.Suggest(query, r.catalog.Titles(), limit)
}

// Poster resolves a poster for an arbitrary title. With posters disabled it
// returns "".
func (r *Recommender) Poster(ctx context.Context, title string, year *int) string {
	if r.posters == nil {
		return ""
	}
	return r.posters.Resolve(ctx, title, year)
}

func (r *Recommender) poster(ctx context.Context, m models.Movie) string {
	return r.Poster(ctx, m.Name, m.Year)
}
