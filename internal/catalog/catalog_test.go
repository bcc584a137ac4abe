// file: internal/catalog/catalog_test.go
// version: 1.1.0
// guid: aa65e88d-185f-4823-a4e3-7914818758ed

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeMovies() ([]models.Movie, [][]float64) {
	movies := []models.Movie{
		{Name: "Sholay", Genre: "Action", Year: models.IntPtr(1975), Rating: models.FloatPtr(8.1)},
		{Name: "Lagaan", Genre: "Drama", Year: models.IntPtr(2001)},
		{Name: "Deewaar", Genre: "Action"},
	}
	matrix := [][]float64{
		{1, 0.2, 0.9},
		{0.2, 1, 0.1},
		{0.9, 0.1, 1},
	}
	return movies, matrix
}

func TestNewAssignsStableIDs(t *testing.T) {
	movies, matrix := threeMovies()
	movies[2].ID = 99

	c, err := New(movies, matrix)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	for i := 0; i < c.Len(); i++ {
		m, ok := c.Movie(i)
		require.True(t, ok)
		assert.Equal(t, i, m.ID)
	}
	assert.Equal(t, []string{"Sholay", "Lagaan", "Deewaar"}, c.Titles())
	assert.Equal(t, []string{"Action", "Drama"}, c.Genres())
	assert.InDelta(t, 0.9, c.Similarity(0, 2), 1e-9)
}

func TestNewCopiesInputs(t *testing.T) {
	movies, matrix := threeMovies()
	c, err := New(movies, matrix)
	require.NoError(t, err)

	matrix[0][1] = 42
	movies[0].Name = "Changed"

	assert.InDelta(t, 0.2, c.Similarity(0, 1), 1e-9)
	m, _ := c.Movie(0)
	assert.Equal(t, "Sholay", m.Name)

	row, ok := c.Row(0)
	require.True(t, ok)
	row[1] = 7
	assert.InDelta(t, 0.2, c.Similarity(0, 1), 1e-9)
}

func TestNewValidation(t *testing.T) {
	movies, matrix := threeMovies()

	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New(movies, matrix[:2])
	assert.ErrorIs(t, err, ErrMisaligned)

	bad := [][]float64{{1, 0, 0}, {0, 1}, {0, 0, 1}}
	_, err = New(movies, bad)
	assert.ErrorIs(t, err, ErrMisaligned)

	dup := append([]models.Movie(nil), movies...)
	dup[2].Name = "Sholay"
	_, err = New(dup, matrix)
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	blank := append([]models.Movie(nil), movies...)
	blank[1].Name = "  "
	_, err = New(blank, matrix)
	assert.Error(t, err)
}

func TestLookupIgnoresCase(t *testing.T) {
	movies, matrix := threeMovies()
	c, err := New(movies, matrix)
	require.NoError(t, err)

	m, ok := c.Lookup("sholay")
	require.True(t, ok)
	assert.Equal(t, "Sholay", m.Name)

	m, ok = c.Lookup("  DEEWAAR ")
	require.True(t, ok)
	assert.Equal(t, 2, m.ID)

	_, ok = c.Lookup("Shole")
	assert.False(t, ok)

	_, ok = c.Movie(3)
	assert.False(t, ok)
	_, ok = c.Row(-1)
	assert.False(t, ok)
}

func TestLookupCaseVariants(t *testing.T) {
	movies := []models.Movie{{Name: "Don", Genre: "Action"}, {Name: "DON", Genre: "Action"}}
	c, err := New(movies, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)

	m, ok := c.Lookup("DON")
	require.True(t, ok)
	assert.Equal(t, 1, m.ID)

	m, ok = c.Lookup("don")
	require.True(t, ok)
	assert.Equal(t, 0, m.ID)
}

func TestReadMovies(t *testing.T) {
	input := "Movie Name,Genre,Year,Rating\n" +
		"Sholay,Action,1975,8.1\n" +
		"\"Dilwale Dulhania Le Jayenge\",Romance,1995.0,\n" +
		"Gully Boy,Drama,,11\n"

	movies, err := ReadMovies(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, movies, 3)

	assert.Equal(t, "Sholay", movies[0].Name)
	assert.Equal(t, 1975, *movies[0].Year)
	assert.InDelta(t, 8.1, *movies[0].Rating, 1e-9)

	assert.Equal(t, 1995, *movies[1].Year)
	assert.Nil(t, movies[1].Rating)

	assert.Nil(t, movies[2].Year)
	assert.Nil(t, movies[2].Rating, "out of range rating is dropped")
	assert.Equal(t, 2, movies[2].ID)
}

func TestReadMoviesDropsImplausibleYears(t *testing.T) {
	input := "Movie Name,Genre,Year\n" +
		"Sholay,Action,1e30\n" +
		"Lagaan,Drama,-1975\n" +
		"Don,Action,1799\n" +
		"Dangal,Drama,9999.5\n" +
		"Deewaar,Drama,1800\n"

	movies, err := ReadMovies(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, movies, 5)
	for _, m := range movies[:4] {
		assert.Nil(t, m.Year, m.Name)
	}
	require.NotNil(t, movies[4].Year)
	assert.Equal(t, 1800, *movies[4].Year)
}

func TestReadMoviesHeaderErrors(t *testing.T) {
	_, err := ReadMovies(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyCatalog))

	_, err = ReadMovies(strings.NewReader("Title,Genre\nSholay,Action\n"))
	assert.Error(t, err)

	_, err = ReadMovies(strings.NewReader("Movie Name,Year\nSholay,1975\n"))
	assert.Error(t, err)

	_, err = ReadMovies(strings.NewReader("Movie Name,Genre\n"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestReadMatrix(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(`[[1,0.5],[0.5,1]]`))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0.5}, {0.5, 1}}, m)

	_, err = ReadMatrix(strings.NewReader(`{"not":"a matrix"}`))
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	simPath := filepath.Join(dir, "similarity.json")

	require.NoError(t, os.WriteFile(moviesPath, []byte("Movie Name,Genre\nSholay,Action\nLagaan,Drama\n"), 0o644))
	require.NoError(t, os.WriteFile(simPath, []byte(`[[1,0.3],[0.3,1]]`), 0o644))

	c, err := LoadFiles(moviesPath, simPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, os.WriteFile(simPath, []byte(`[[1]]`), 0o644))
	_, err = LoadFiles(moviesPath, simPath)
	assert.ErrorIs(t, err, ErrMisaligned)

	_, err = LoadFiles(filepath.Join(dir, "missing.csv"), simPath)
	assert.Error(t, err)
}
