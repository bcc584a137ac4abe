// file: internal/catalog/loader.go
// version: 1.1.0
// guid: 8fd5626d-6015-411e-8760-e039d6c0cf2c

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/models"
)

// Column headers understood by ReadMovies (matched case-insensitively)
const (
	ColumnName   = "movie name"
	ColumnGenre  = "genre"
	ColumnYear   = "year"
	ColumnRating = "rating"
)

// LoadFiles reads the movie CSV and the similarity matrix JSON and
// returns the validated catalog.
func LoadFiles(moviesPath, similarityPath string) (*Catalog, error) {
	mf, err := os.Open(moviesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open movies file: %w", err)
	}
	defer mf.Close()

	movies, err := ReadMovies(mf)
	if err != nil {
		return nil, fmt.Errorf("failed to read movies from %s: %w", moviesPath, err)
	}

	sf, err := os.Open(similarityPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open similarity file: %w", err)
	}
	defer sf.Close()

	matrix, err := ReadMatrix(sf)
	if err != nil {
		return nil, fmt.Errorf("failed to read similarity matrix from %s: %w", similarityPath, err)
	}

	c, err := New(movies, matrix)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Int("movies", c.Len()).
		Int("genres", len(c.Genres())).
		Str("movies_file", moviesPath).
		Msg("catalog loaded")
	return c, nil
}

// ReadMovies parses a CSV movie table. The header row must contain
// "Movie Name" and "Genre"; "Year" and "Rating" are optional.
func ReadMovies(r io.Reader) ([]models.Movie, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	nameCol, ok := cols[ColumnName]
	if !ok {
		return nil, fmt.Errorf("missing %q column", "Movie Name")
	}
	genreCol, ok := cols[ColumnGenre]
	if !ok {
		return nil, fmt.Errorf("missing %q column", "Genre")
	}
	yearCol, hasYear := cols[ColumnYear]
	ratingCol, hasRating := cols[ColumnRating]

	var movies []models.Movie
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		m := models.Movie{
			Name:  strings.TrimSpace(field(rec, nameCol)),
			Genre: strings.TrimSpace(field(rec, genreCol)),
		}
		if hasYear {
			m.Year = parseYear(field(rec, yearCol))
		}
		if hasRating {
			m.Rating = parseRating(field(rec, ratingCol))
			if m.Rating == nil && strings.TrimSpace(field(rec, ratingCol)) != "" {
				logging.Warn().Int("line", line).Str("movie", m.Name).Msg("ignoring out of range rating")
			}
		}
		m.ID = len(movies)
		movies = append(movies, m)
	}
	if len(movies) == 0 {
		return nil, ErrEmptyCatalog
	}
	return movies, nil
}

// ReadMatrix decodes a JSON array of numeric rows.
func ReadMatrix(r io.Reader) ([][]float64, error) {
	var matrix [][]float64
	if err := json.NewDecoder(r).Decode(&matrix); err != nil {
		return nil, fmt.Errorf("failed to decode similarity matrix: %w", err)
	}
	return matrix, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

const (
	minYear = 1800
	maxYear = 9999
)

// parseYear accepts "1975" as well as float renderings like "1975.0".
// Values outside minYear..maxYear are dropped.
func parseYear(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < minYear || f > maxYear {
		return nil
	}
	return models.IntPtr(int(f))
}

func parseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 10 {
		return nil
	}
	return models.FloatPtr(f)
}
