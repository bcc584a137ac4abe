// file: internal/recommend/engine_test.go
// version: 1.0.0
// guid: c2ab4b7e-fa0c-4383-8ec9-38ae76bbe0bd

package recommend

import (
	"testing"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/jdfalk/movie-recommender/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendSholay(t *testing.T) {
	e := NewEngine(testutil.NewCatalog(t), 0)
	assert.Equal(t, DefaultCount, e.Count())

	got, err := e.Recommend("Sholay")
	require.NoError(t, err)
	assert.Equal(t, []string{"Deewaar", "Don", "Lagaan", "Dangal", "Andaz Apna Apna"}, got)
}

func TestRecommendCaseInsensitive(t *testing.T) {
	e := NewEngine(testutil.NewCatalog(t), DefaultCount)

	lower, err := e.Recommend("sholay")
	require.NoError(t, err)
	exact, err := e.Recommend("Sholay")
	require.NoError(t, err)
	assert.Equal(t, exact, lower)
}

func TestRecommendProperties(t *testing.T) {
	c := testutil.NewCatalog(t)
	e := NewEngine(c, DefaultCount)

	for _, title := range c.Titles() {
		scored, err := e.Scores(title)
		require.NoError(t, err, title)
		require.Len(t, scored, 5, title)

		seen := map[string]bool{}
		for i, s := range scored {
			assert.NotEqual(t, title, s.Movie.Name)
			assert.False(t, seen[s.Movie.Name], "duplicate %s", s.Movie.Name)
			seen[s.Movie.Name] = true
			if i > 0 {
				prev := scored[i-1]
				assert.GreaterOrEqual(t, prev.Score, s.Score)
				if prev.Score == s.Score {
					assert.Less(t, prev.Movie.ID, s.Movie.ID, "ties keep catalog order")
				}
			}
		}

		names, err := e.Recommend(title)
		require.NoError(t, err)
		for i := range names {
			assert.Equal(t, scored[i].Movie.Name, names[i])
		}
	}
}

func TestScoresMatchMatrix(t *testing.T) {
	c := testutil.NewCatalog(t)
	e := NewEngine(c, 3)

	scored, err := e.Scores("Sholay")
	require.NoError(t, err)
	require.Len(t, scored, 3)
	for _, s := range scored {
		assert.InDelta(t, c.Similarity(0, s.Movie.ID), s.Score, 1e-9)
	}
	assert.InDelta(t, 0.9, scored[0].Score, 1e-9)
}

func TestRecommendNotFound(t *testing.T) {
	e := NewEngine(testutil.NewCatalog(t), DefaultCount)

	_, err := e.Recommend("Shole")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.Scores("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendSmallCatalog(t *testing.T) {
	c, err := catalog.New([]models.Movie{
		{Name: "A", Genre: "Drama"},
		{Name: "B", Genre: "Drama"},
		{Name: "C", Genre: "Drama"},
	}, [][]float64{{1, 0.5, 0.5}, {0.5, 1, 0.2}, {0.5, 0.2, 1}})
	require.NoError(t, err)

	got, err := NewEngine(c, DefaultCount).Recommend("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)
}

// A duplicate row whose score ties the self-similarity must not push the
// query title into the results.
func TestRecommendExcludesSelfOnTiedMaximum(t *testing.T) {
	c, err := catalog.New([]models.Movie{
		{Name: "Twin", Genre: "Drama"},
		{Name: "Original", Genre: "Drama"},
		{Name: "Other", Genre: "Drama"},
	}, [][]float64{{1, 1, 0.1}, {1, 1, 0.3}, {0.1, 0.3, 1}})
	require.NoError(t, err)

	got, err := NewEngine(c, 2).Recommend("Original")
	require.NoError(t, err)
	assert.Equal(t, []string{"Twin", "Other"}, got)
}
