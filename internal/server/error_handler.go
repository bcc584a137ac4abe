// file: internal/server/error_handler.go
// version: 2.1.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9f0a

package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/server/middleware"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
}

// NotFoundResponse is the 404 body; suggestions is always present.
type NotFoundResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code"`
	Status      int      `json:"status"`
	Suggestions []string `json:"suggestions"`
}

// RespondWithError sends a standardized error response and logs the error
func RespondWithError(c *gin.Context, statusCode int, message string, code string) {
	logErrorWithContext(c, statusCode, message)

	c.JSON(statusCode, ErrorResponse{
		Error:  message,
		Code:   code,
		Status: statusCode,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error response
func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message, "BAD_REQUEST")
}

// RespondWithValidationError sends a 400 error for validation failures
func RespondWithValidationError(c *gin.Context, field string, reason string) {
	message := "validation error: " + field
	if reason != "" {
		message = message + " (" + reason + ")"
	}
	RespondWithError(c, http.StatusBadRequest, message, "VALIDATION_ERROR")
}

// RespondWithNotFound sends a 404 Not Found error response
func RespondWithNotFound(c *gin.Context, resourceType string, id string) {
	RespondWithNotFoundSuggestions(c, resourceType, id, nil)
}

// RespondWithNotFoundSuggestions sends a 404 that lists close matches.
func RespondWithNotFoundSuggestions(c *gin.Context, resourceType, id string, suggestions []string) {
	message := resourceType + " not found"
	if id != "" {
		message = message + ": " + id
	}
	logErrorWithContext(c, http.StatusNotFound, message)
	if suggestions == nil {
		suggestions = []string{}
	}
	c.JSON(http.StatusNotFound, NotFoundResponse{
		Error:       message,
		Code:        "NOT_FOUND",
		Status:      http.StatusNotFound,
		Suggestions: suggestions,
	})
}

// RespondWithInternalError sends a 500 Internal Server Error response
func RespondWithInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// RespondWithServiceUnavailable sends a 503 for disabled features
func RespondWithServiceUnavailable(c *gin.Context, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, message, "UNAVAILABLE")
}

// logErrorWithContext logs an error with request context for debugging
func logErrorWithContext(c *gin.Context, statusCode int, message string) {
	ev := logging.Warn()
	if statusCode >= 500 {
		ev = logging.Error()
	}
	ev.Str("request_id", middleware.GetRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", statusCode).
		Str("client_ip", c.ClientIP()).
		Msg(message)
}

// ParseQueryInt parses an integer query parameter with a default value
func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.DefaultQuery(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ParseQueryIntPtr parses an optional integer query parameter. ok is false
// when the parameter is present but not an integer.
func ParseQueryIntPtr(c *gin.Context, key string) (value *int, ok bool) {
	valueStr := strings.TrimSpace(c.Query(key))
	if valueStr == "" {
		return nil, true
	}
	v, err := strconv.Atoi(valueStr)
	if err != nil {
		return nil, false
	}
	return &v, true
}
