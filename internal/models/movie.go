// file: internal/models/movie.go
// version: 1.0.0
// guid: 70b67f8d-f2b9-4df1-bac3-6e29db213e97

package models

// Movie represents one catalog row.
//
// ID is the load-order index assigned by the catalog and is the only value
// that may be used to address the similarity matrix.
type Movie struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Genre  string   `json:"genre"`
	Year   *int     `json:"year,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// HasYear reports whether the movie carries a release year
func (m Movie) HasYear() bool {
	return m.Year != nil
}

// HasRating reports whether the movie carries a rating
func (m Movie) HasRating() bool {
	return m.Rating != nil
}

// ScoredMovie pairs a movie with its similarity to a reference title
type ScoredMovie struct {
	Movie Movie   `json:"movie"`
	Score float64 `json:"score"`
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 {
	return &f
}
