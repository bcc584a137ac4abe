// file: internal/testutil/catalog.go
// version: 1.0.0
// guid: e9be54b5-ed24-4e41-9304-c4c4ca86c048

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/models"
)

// Movies returns the fixture movie table. Andaz Apna Apna has no rating and
// Zindagi Na Milegi Dobara has no year.
func Movies() []models.Movie {
	y := models.IntPtr
	r := models.FloatPtr
	return []models.Movie{
		{ID: 0, Name: "Sholay", Genre: "Action", Year: y(1975), Rating: r(8.1)},
		{ID: 1, Name: "Deewaar", Genre: "Action", Year: y(1975), Rating: r(8.0)},
		{ID: 2, Name: "Dilwale Dulhania Le Jayenge", Genre: "Romance", Year: y(1995), Rating: r(8.0)},
		{ID: 3, Name: "Lagaan", Genre: "Drama", Year: y(2001), Rating: r(8.1)},
		{ID: 4, Name: "3 Idiots", Genre: "Comedy", Year: y(2009), Rating: r(8.4)},
		{ID: 5, Name: "Dangal", Genre: "Drama", Year: y(2016), Rating: r(8.3)},
		{ID: 6, Name: "Andaz Apna Apna", Genre: "Comedy", Year: y(1994)},
		{ID: 7, Name: "Zindagi Na Milegi Dobara", Genre: "Drama", Rating: r(8.2)},
		{ID: 8, Name: "Don", Genre: "Action", Year: y(1978), Rating: r(7.4)},
		{ID: 9, Name: "Gully Boy", Genre: "Drama", Year: y(2019), Rating: r(7.9)},
	}
}

// Similarity returns the symmetric fixture matrix aligned with Movies.
// Sholay's neighbours are Deewaar, Don, Lagaan, Dangal (tied at 0.5) and
// Andaz Apna Apna.
func Similarity() [][]float64 {
	return [][]float64{
		{1, .9, .2, .5, .3, .5, .4, .1, .8, .3},
		{.9, 1, .2, .4, .2, .3, .3, .1, .85, .4},
		{.2, .2, 1, .3, .4, .2, .5, .6, .1, .3},
		{.5, .4, .3, 1, .4, .7, .2, .3, .2, .5},
		{.3, .2, .4, .4, 1, .6, .7, .6, .1, .4},
		{.5, .3, .2, .7, .6, 1, .3, .4, .2, .6},
		{.4, .3, .5, .2, .7, .3, 1, .5, .2, .2},
		{.1, .1, .6, .3, .6, .4, .5, 1, .1, .5},
		{.8, .85, .1, .2, .1, .2, .2, .1, 1, .3},
		{.3, .4, .3, .5, .4, .6, .2, .5, .3, 1},
	}
}

// NewCatalog builds the fixture catalog.
func NewCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(Movies(), Similarity())
	if err != nil {
		t.Fatalf("failed to build fixture catalog: %v", err)
	}
	return c
}

// WriteCatalogFiles writes the fixture as movies.csv and similarity.json
// under dir and returns both paths.
func WriteCatalogFiles(t *testing.T, dir string) (string, string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("Movie Name,Genre,Year,Rating\n")
	for _, m := range Movies() {
		year, rating := "", ""
		if m.Year != nil {
			year = fmt.Sprint(*m.Year)
		}
		if m.Rating != nil {
			rating = fmt.Sprint(*m.Rating)
		}
		fmt.Fprintf(&b, "%q,%s,%s,%s\n", m.Name, m.Genre, year, rating)
	}

	moviesPath := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(moviesPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write movies: %v", err)
	}

	data, err := json.Marshal(Similarity())
	if err != nil {
		t.Fatalf("failed to encode matrix: %v", err)
	}
	simPath := filepath.Join(dir, "similarity.json")
	if err := os.WriteFile(simPath, data, 0o644); err != nil {
		t.Fatalf("failed to write matrix: %v", err)
	}
	return moviesPath, simPath
}
