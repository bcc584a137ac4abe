// file: internal/realtime/events_test.go
// version: 2.0.0
// guid: a0b1c2d3-e4f5-6a7b-8c9d-0e1f2a3b4c5d

package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSubscriptions(t *testing.T) {
	client := NewClient("c1")
	assert.True(t, client.wants("op-1"), "no subscriptions means everything")

	client.Subscribe("op-1")
	assert.True(t, client.wants("op-1"))
	assert.False(t, client.wants("op-2"))
	assert.True(t, client.wants(""), "hub-wide events always pass")

	client.Unsubscribe("op-1")
	assert.True(t, client.wants("op-2"))
}

func TestBroadcastRespectsSubscriptions(t *testing.T) {
	hub := NewEventHub()
	all := NewClient("all")
	one := NewClient("one")
	one.Subscribe("op-1")
	hub.RegisterClient(all)
	hub.RegisterClient(one)
	require.Equal(t, 2, hub.GetClientCount())

	hub.OperationProgress("op-2", 1, 4, "Sholay")
	hub.OperationStatus("op-1", "failed", "boom")

	require.Len(t, all.Channel, 2)
	require.Len(t, one.Channel, 1)

	ev := <-all.Channel
	assert.Equal(t, EventOperationProgress, ev.Type)
	assert.Equal(t, 25, ev.Data["percentage"])

	ev = <-one.Channel
	assert.Equal(t, EventOperationStatus, ev.Type)
	assert.Equal(t, "boom", ev.Data["error"])

	hub.UnregisterClient("all")
	hub.UnregisterClient("all")
	assert.Equal(t, 1, hub.GetClientCount())
	_, open := <-all.Channel
	assert.True(t, open, "buffered event is still readable")
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	hub := NewEventHub()
	client := NewClient("slow")
	hub.RegisterClient(client)

	for i := 0; i < cap(client.Channel)+10; i++ {
		hub.OperationProgress("op", i, 200, "")
	}
	assert.Len(t, client.Channel, cap(client.Channel))
}

func TestCalculatePercentage(t *testing.T) {
	assert.Equal(t, 0, calculatePercentage(5, 0))
	assert.Equal(t, 50, calculatePercentage(1, 2))
	assert.Equal(t, 100, calculatePercentage(3, 2))
}

func TestHandleSSE(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewEventHub()

	router := gin.New()
	router.GET("/events", hub.HandleSSE)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events?operation=op-1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.OperationProgress("op-2", 1, 2, "ignored")
	hub.OperationProgress("op-1", 1, 2, "Sholay")
	hub.OperationStatus("op-1", "completed", "")

	// let the handler drain its channel before disconnecting
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connection.established")
	assert.Contains(t, body, `"message":"Sholay"`)
	assert.Contains(t, body, "event: operation.status")
	assert.NotContains(t, body, "ignored")
	assert.Equal(t, 0, hub.GetClientCount())
}
