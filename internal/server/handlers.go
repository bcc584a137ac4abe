// file: internal/server/handlers.go
// version: 1.0.0
// guid: 0e4b7d92-3a16-4c58-9f2d-b5c8e1a6f074

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/movie-recommender/internal/browse"
	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/jdfalk/movie-recommender/internal/operations"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/service"
)

const (
	defaultSuggestions = 5
	maxSuggestions     = 25
	posterWarmType     = "poster_warm"
)

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"timestamp":         time.Now().Unix(),
		"version":           Version,
		"uptime_seconds":    int(time.Since(s.startedAt).Seconds()),
		"movies":            s.svc.Catalog().Len(),
		"genres":            len(s.svc.Genres()),
		"posters_enabled":   s.warmer != nil,
		"active_operations": len(s.queue.ActiveOperations()),
	})
}

func (s *Server) getRecommendations(c *gin.Context) {
	ol := operationLogger(c, "getRecommendations")
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		RespondWithValidationError(c, "title", "required")
		return
	}
	ol.SetResourceID(title)

	result, err := s.svc.Recommend(c.Request.Context(), title)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			RespondWithNotFoundSuggestions(c, "movie", title, nf.Suggestions)
			return
		}
		ol.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to compute recommendations")
		return
	}

	ol.AddDetail("match", result.Match)
	ol.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, result)
}

func (s *Server) searchMovies(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		RespondWithValidationError(c, "q", "required")
		return
	}
	limit := ParseQueryInt(c, "limit", defaultSuggestions)
	if limit < 1 {
		limit = defaultSuggestions
	}
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	c.JSON(http.StatusOK, NewListResponse(s.svc.Suggest(q, limit), 0))
}

func (s *Server) listGenres(c *gin.Context) {
	c.JSON(http.StatusOK, NewListResponse(s.svc.Genres(), 0))
}

func (s *Server) hasGenre(genre string) bool {
	for _, g := range s.svc.Genres() {
		if g == genre {
			return true
		}
	}
	return false
}

func (s *Server) listGenreMovies(c *gin.Context) {
	ol := operationLogger(c, "listGenreMovies")
	genre := c.Param("genre")
	ol.SetResourceID(genre)

	if !s.hasGenre(genre) {
		RespondWithNotFound(c, "genre", genre)
		return
	}

	items, err := s.svc.Browse(c.Request.Context(), genre, c.Query("sort"))
	if err != nil {
		if errors.Is(err, browse.ErrInvalidSort) {
			RespondWithBadRequest(c, err.Error())
			return
		}
		ol.LogError(http.StatusInternalServerError, err)
		RespondWithInternalError(c, "failed to browse genre")
		return
	}
	ol.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, NewListResponse(items, 0))
}

func (s *Server) getPoster(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		RespondWithValidationError(c, "title", "required")
		return
	}
	year, ok := ParseQueryIntPtr(c, "year")
	if !ok {
		RespondWithValidationError(c, "year", "must be an integer")
		return
	}
	if s.warmer == nil {
		RespondWithServiceUnavailable(c, "poster lookups are disabled")
		return
	}

	url := s.svc.Poster(c.Request.Context(), title, year)
	c.JSON(http.StatusOK, PosterResponse{
		Title:       title,
		Year:        year,
		PosterURL:   url,
		Placeholder: url == poster.Placeholder,
	})
}

// startPosterWarm queues a background job resolving posters for the whole
// catalog, or one genre when ?genre= is given.
func (s *Server) startPosterWarm(c *gin.Context) {
	if s.warmer == nil {
		RespondWithServiceUnavailable(c, "poster lookups are disabled")
		return
	}

	movies := s.svc.Catalog().Movies()
	if genre := c.Query("genre"); genre != "" {
		if !s.hasGenre(genre) {
			RespondWithNotFound(c, "genre", genre)
			return
		}
		filtered := movies[:0]
		for _, m := range movies {
			if m.Genre == genre {
				filtered = append(filtered, m)
			}
		}
		movies = filtered
	}

	id := ulid.Make().String()
	err := s.queue.Enqueue(id, posterWarmType, func(ctx context.Context, p operations.ProgressReporter) error {
		done := 0
		found := s.warmer.Warm(ctx, movies, func(m models.Movie, _ string) {
			done++
			p.UpdateProgress(done, len(movies), m.Name)
		})
		p.UpdateProgress(done, len(movies), fmt.Sprintf("%d posters found", found))
		return nil
	})
	if err != nil {
		RespondWithServiceUnavailable(c, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, OperationResponse{ID: id, Type: posterWarmType, Status: operations.StatusQueued})
}

func (s *Server) listActiveOperations(c *gin.Context) {
	c.JSON(http.StatusOK, NewListResponse(s.queue.ActiveOperations(), 0))
}

func (s *Server) getOperationStatus(c *gin.Context) {
	st, err := s.queue.GetStatus(c.Param("id"))
	if err != nil {
		RespondWithNotFound(c, "operation", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) cancelOperation(c *gin.Context) {
	id := c.Param("id")
	if err := s.queue.Cancel(id); err != nil {
		RespondWithNotFound(c, "operation", id)
		return
	}
	st, _ := s.queue.GetStatus(id)
	c.JSON(http.StatusOK, st)
}
