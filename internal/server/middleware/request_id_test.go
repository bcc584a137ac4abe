// file: internal/server/middleware/request_id_test.go
// version: 1.0.0
// guid: 6b1d3e58-94a2-4f7c-b0e6-1c8f2a7d5e93

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), AccessLog())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return router
}

func TestRequestID_Generates(t *testing.T) {
	t.Parallel()

	resp := httptest.NewRecorder()
	newRequestIDRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/id", nil))

	id := resp.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, resp.Body.String())
	_, err := ulid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	resp := httptest.NewRecorder()
	newRequestIDRouter().ServeHTTP(resp, req)

	assert.Equal(t, "client-supplied", resp.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-supplied", resp.Body.String())
}
