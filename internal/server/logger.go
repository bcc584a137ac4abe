// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/server/middleware"
)

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
	details    map[string]any
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
		details:   make(map[string]any),
	}
}

// operationLogger builds an OperationLogger from the gin context.
func operationLogger(c *gin.Context, handler string) *OperationLogger {
	return NewOperationLogger(handler, c.Request.Method, c.FullPath(), middleware.GetRequestID(c))
}

// SetResourceID sets the resource being operated on (a title, a genre)
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

func (ol *OperationLogger) event(e *zerolog.Event) *zerolog.Event {
	e = e.Str("handler", ol.handler).
		Str("method", ol.method).
		Str("path", ol.path).
		Str("request_id", ol.requestID)
	if ol.resourceID != "" {
		e = e.Str("resource", ol.resourceID)
	}
	if len(ol.details) > 0 {
		e = e.Fields(ol.details)
	}
	return e
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	ol.event(logging.Debug()).Msg("operation started")
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	ol.event(logging.Debug()).Int("status", statusCode).Dur("duration", time.Since(ol.startTime)).
		Msg("operation succeeded")
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	e := logging.Warn()
	if statusCode >= 500 {
		e = logging.Error()
	}
	ol.event(e).Err(err).Int("status", statusCode).Dur("duration", time.Since(ol.startTime)).
		Msg("operation failed")
}
