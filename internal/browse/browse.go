// file: internal/browse/browse.go
// version: 1.0.0
// guid: 93f7c1d2-5a6e-4b08-9e34-d8a2f0b71c65

// Package browse lists the movies of one genre in a chosen order.
package browse

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/metrics"
	"github.com/jdfalk/movie-recommender/internal/models"
)

// DefaultLimit is the number of movies Browse returns.
const DefaultLimit = 10

// SortKey selects the browse order.
type SortKey string

const (
	// SortName orders by title, A to Z.
	SortName SortKey = "name"
	// SortYear orders newest first.
	SortYear SortKey = "year"
	// SortRating orders highest rated first.
	SortRating SortKey = "rating"
)

// ErrInvalidSort is returned by ParseSortKey for unknown keys.
var ErrInvalidSort = errors.New("invalid sort key")

// ParseSortKey accepts name (or a-z), year and rating. Empty means name.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "a-z", "title":
		return SortName, nil
	case "year":
		return SortYear, nil
	case "rating":
		return SortRating, nil
	default:
		return "", fmt.Errorf("%w: %q (use name, year or rating)", ErrInvalidSort, s)
	}
}

// Browser reads genre listings from a catalog.
type Browser struct {
	catalog *catalog.Catalog
	limit   int
}

// New creates a Browser that returns at most limit movies from Browse.
func New(c *catalog.Catalog, limit int) *Browser {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Browser{catalog: c, limit: limit}
}

// Limit is the display cap applied by Browse.
func (b *Browser) Limit() int { return b.limit }

// Genres returns the distinct genres, sorted.
func (b *Browser) Genres() []string {
	return b.catalog.Genres()
}

// Browse returns the first Limit movies of genre in key order.
func (b *Browser) Browse(genre string, key SortKey) []models.Movie {
	movies := b.All(genre, key)
	if len(movies) > b.limit {
		movies = movies[:b.limit]
	}
	return movies
}

// All returns every movie whose genre equals genre exactly, ordered by key.
// Missing years and ratings sort last; ties keep catalog order.
func (b *Browser) All(genre string, key SortKey) []models.Movie {
	var movies []models.Movie
	for _, m := range b.catalog.Movies() {
		if m.Genre == genre {
			movies = append(movies, m)
		}
	}
	metrics.IncGenreBrowse(string(key))

	switch key {
	case SortYear:
		sort.SliceStable(movies, func(i, j int) bool {
			return descending(movies[i].Year, movies[j].Year)
		})
	case SortRating:
		sort.SliceStable(movies, func(i, j int) bool {
			return descending(movies[i].Rating, movies[j].Rating)
		})
	default:
		// Collator holds scratch buffers; one per call.
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(movies, func(i, j int) bool {
			return col.CompareString(movies[i].Name, movies[j].Name) < 0
		})
	}
	return movies
}

func descending[T int | float64](a, b *T) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
