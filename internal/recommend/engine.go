// file: internal/recommend/engine.go
// version: 1.0.0
// guid: 919ada3f-0c63-4841-b04b-c9f687726078

// Package recommend ranks catalog neighbours using the similarity matrix.
package recommend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/models"
)

// DefaultCount is the number of recommendations returned.
const DefaultCount = 5

// ErrNotFound is returned when the title is not in the catalog.
var ErrNotFound = errors.New("title not in catalog")

// Engine produces top-K recommendations from a catalog.
type Engine struct {
	catalog *catalog.Catalog
	count   int
}

// NewEngine creates an engine returning count titles (DefaultCount when <= 0).
func NewEngine(c *catalog.Catalog, count int) *Engine {
	if count <= 0 {
		count = DefaultCount
	}
	return &Engine{catalog: c, count: count}
}

// Count returns how many recommendations the engine produces
func (e *Engine) Count() int {
	return e.count
}

// Recommend returns the titles most similar to title, best first.
func (e *Engine) Recommend(title string) ([]string, error) {
	ranked, err := e.rank(title)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Movie.Name
	}
	return out, nil
}

// Scores returns the same movies as Recommend together with their scores.
func (e *Engine) Scores(title string) ([]models.ScoredMovie, error) {
	return e.rank(title)
}

// rank is shared by Recommend and Scores so displayed order and scores
// cannot diverge. The sort is stable: equal scores keep catalog order.
// The query movie is excluded by ID rather than by position, so a
// duplicate row with an equal self-score cannot displace it.
func (e *Engine) rank(title string) ([]models.ScoredMovie, error) {
	movie, ok := e.catalog.Lookup(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	row, _ := e.catalog.Row(movie.ID)

	ids := make([]int, len(row))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return row[ids[a]] > row[ids[b]]
	})

	out := make([]models.ScoredMovie, 0, e.count)
	for _, id := range ids {
		if len(out) == e.count {
			break
		}
		if id == movie.ID {
			continue
		}
		m, _ := e.catalog.Movie(id)
		out = append(out, models.ScoredMovie{Movie: m, Score: row[id]})
	}
	return out, nil
}
