// file: internal/tmdb/movies.go
// version: 1.0.0
// guid: b9aec00a-6a0a-47c8-92cf-036f5881bb21

package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ImageConfig is the images section of /configuration.
type ImageConfig struct {
	BaseURL       string   `json:"base_url"`
	SecureBaseURL string   `json:"secure_base_url"`
	PosterSizes   []string `json:"poster_sizes"`
}

type configurationResponse struct {
	Images ImageConfig `json:"images"`
}

// SearchResult is one candidate from /search/movie.
type SearchResult struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	OriginalTitle    string `json:"original_title"`
	PosterPath       string `json:"poster_path"`
	ReleaseDate      string `json:"release_date"`
	OriginalLanguage string `json:"original_language"`
}

// SearchResponse is the /search/movie envelope.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// Configuration fetches the image base URL and available sizes.
func (c *Client) Configuration(ctx context.Context) (*ImageConfig, error) {
	var resp configurationResponse
	if err := c.get(ctx, "configuration", "/configuration", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Images.BaseURL == "" && resp.Images.SecureBaseURL == "" {
		return nil, fmt.Errorf("%w: configuration has no image base url", ErrDecode)
	}
	return &resp.Images, nil
}

// SearchMovie searches movies by title.
func (c *Client) SearchMovie(ctx context.Context, title string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", title)

	var resp SearchResponse
	if err := c.get(ctx, "search", "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// PosterURL joins base URL, size and poster path. The secure base URL is
// preferred; a size the API does not list falls back to "original".
func (ic *ImageConfig) PosterURL(size, posterPath string) string {
	base := ic.SecureBaseURL
	if base == "" {
		base = ic.BaseURL
	}
	if len(ic.PosterSizes) > 0 && !slices.Contains(ic.PosterSizes, size) {
		size = "original"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + size + "/" + strings.TrimLeft(posterPath, "/")
}

// ReleasedIn reports whether the release date falls in year.
func (r SearchResult) ReleasedIn(year int) bool {
	return strings.HasPrefix(r.ReleaseDate, fmt.Sprintf("%04d", year))
}
