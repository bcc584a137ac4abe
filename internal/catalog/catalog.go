// file: internal/catalog/catalog.go
// version: 1.0.0
// guid: 6ee0b454-40cd-4f42-a334-e2247797dbf5

// Package catalog holds the movie table and its aligned similarity matrix.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jdfalk/movie-recommender/internal/models"
)

var (
	// ErrEmptyCatalog is returned when no movies are supplied
	ErrEmptyCatalog = errors.New("catalog has no movies")
	// ErrMisaligned is returned when the matrix does not match the movie table
	ErrMisaligned = errors.New("similarity matrix is not aligned with catalog")
	// ErrDuplicateTitle is returned when two rows share a name
	ErrDuplicateTitle = errors.New("duplicate movie title")
)

// Catalog is an immutable movie table plus similarity matrix.
// Movie IDs are assigned in load order and index both matrix axes.
type Catalog struct {
	movies []models.Movie
	matrix [][]float64
	byName map[string]int
	genres []string
}

// New validates and wraps movies and matrix. IDs on the input movies are
// overwritten with their position. Inputs are copied.
func New(movies []models.Movie, matrix [][]float64) (*Catalog, error) {
	if len(movies) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(matrix) != len(movies) {
		return nil, fmt.Errorf("%w: %d rows for %d movies", ErrMisaligned, len(matrix), len(movies))
	}

	c := &Catalog{
		movies: make([]models.Movie, len(movies)),
		matrix: make([][]float64, len(matrix)),
		byName: make(map[string]int, len(movies)),
	}

	exact := make(map[string]struct{}, len(movies))
	genreSet := make(map[string]struct{})
	for i, m := range movies {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("movie at row %d has no name", i)
		}
		if _, dup := exact[m.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTitle, m.Name)
		}
		exact[m.Name] = struct{}{}

		m.ID = i
		c.movies[i] = m

		// first row wins for names that only differ by case
		key := strings.ToLower(m.Name)
		if _, ok := c.byName[key]; !ok {
			c.byName[key] = i
		}
		if m.Genre != "" {
			genreSet[m.Genre] = struct{}{}
		}
	}

	for i, row := range matrix {
		if len(row) != len(movies) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMisaligned, i, len(row), len(movies))
		}
		c.matrix[i] = append([]float64(nil), row...)
	}

	c.genres = make([]string, 0, len(genreSet))
	for g := range genreSet {
		c.genres = append(c.genres, g)
	}
	sort.Strings(c.genres)

	return c, nil
}

// Len returns the number of movies
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Movie returns the movie with the given ID.
func (c *Catalog) Movie(id int) (models.Movie, bool) {
	if id < 0 || id >= len(c.movies) {
		return models.Movie{}, false
	}
	return c.movies[id], true
}

// Movies returns a copy of all movies in load order.
func (c *Catalog) Movies() []models.Movie {
	return append([]models.Movie(nil), c.movies...)
}

// Titles returns movie names in load order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Name
	}
	return titles
}

// Lookup finds a movie by name, ignoring case.
func (c *Catalog) Lookup(name string) (models.Movie, bool) {
	if m, ok := c.exact(name); ok {
		return m, true
	}
	id, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.Movie{}, false
	}
	return c.movies[id], true
}

// exact prefers a case-sensitive hit so names that differ only by case
// remain individually addressable.
func (c *Catalog) exact(name string) (models.Movie, bool) {
	id, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return models.Movie{}, false
	}
	if c.movies[id].Name == name {
		return c.movies[id], true
	}
	for _, m := range c.movies {
		if m.Name == name {
			return m, true
		}
	}
	return models.Movie{}, false
}

// Similarity returns the score of movie j relative to movie i.
func (c *Catalog) Similarity(i, j int) float64 {
	return c.matrix[i][j]
}

// Row returns a copy of the similarity row for id.
func (c *Catalog) Row(id int) ([]float64, bool) {
	if id < 0 || id >= len(c.matrix) {
		return nil, false
	}
	return append([]float64(nil), c.matrix[id]...), true
}

// Genres returns the distinct genres, sorted.
func (c *Catalog) Genres() []string {
	return append([]string(nil), c.genres...)
}
