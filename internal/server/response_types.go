// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

// ListResponse provides a consistent format for list responses
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
	Total int `json:"total,omitempty"`
}

// PosterResponse is returned by the poster lookup endpoint
type PosterResponse struct {
	Title       string `json:"title"`
	Year        *int   `json:"year,omitempty"`
	PosterURL   string `json:"poster_url"`
	Placeholder bool   `json:"placeholder"`
}

// OperationResponse acknowledges a queued background operation
type OperationResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// NewListResponse creates a ListResponse for items
func NewListResponse[T any](items []T, total int) *ListResponse {
	if items == nil {
		items = []T{}
	}
	return &ListResponse{Items: items, Count: len(items), Total: total}
}
