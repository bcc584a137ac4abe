// file: internal/realtime/events.go
// version: 2.0.0
// guid: 9e8d7f6a-5c4b-3a21-0f9e-8d7c6b5a4392

package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/movie-recommender/internal/logging"
)

// EventType defines the type of real-time event
type EventType string

const (
	EventOperationProgress EventType = "operation.progress"
	EventOperationStatus   EventType = "operation.status"
	EventConnected         EventType = "connection.established"
)

// Event represents a real-time event to send to clients
type Event struct {
	Type      EventType      `json:"type"`
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID         string
	Channel    chan *Event
	operations map[string]bool // empty means every operation
	mu         sync.RWMutex
}

// NewClient creates a new SSE client
func NewClient(id string) *Client {
	return &Client{
		ID:         id,
		Channel:    make(chan *Event, 100),
		operations: make(map[string]bool),
	}
}

// Subscribe narrows the client to the given operation
func (c *Client) Subscribe(operationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operations[operationID] = true
}

// Unsubscribe removes an operation subscription
func (c *Client) Unsubscribe(operationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.operations, operationID)
}

// wants reports whether the client should receive events for operationID.
func (c *Client) wants(operationID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return operationID == "" || len(c.operations) == 0 || c.operations[operationID]
}

// EventHub fans operation events out to SSE clients. It satisfies
// operations.Notifier.
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]*Client),
	}
}

// RegisterClient registers a new client
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	logging.Debug().Str("client", client.ID).Int("clients", len(h.clients)).Msg("sse client registered")
}

// UnregisterClient removes a client and closes its channel
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[clientID]; exists {
		close(client.Channel)
		delete(h.clients, clientID)
		logging.Debug().Str("client", clientID).Int("clients", len(h.clients)).Msg("sse client unregistered")
	}
}

// Broadcast sends an event to every interested client. Slow clients drop
// events rather than block the sender.
func (h *EventHub) Broadcast(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if !client.wants(event.ID) {
			continue
		}
		select {
		case client.Channel <- event:
		default:
			logging.Warn().Str("client", client.ID).Str("event", string(event.Type)).Msg("sse client channel full, dropping event")
		}
	}
}

// OperationProgress broadcasts a progress update
func (h *EventHub) OperationProgress(operationID string, current, total int, message string) {
	h.Broadcast(&Event{
		Type:      EventOperationProgress,
		ID:        operationID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"operation_id": operationID,
			"current":      current,
			"total":        total,
			"message":      message,
			"percentage":   calculatePercentage(current, total),
		},
	})
}

// OperationStatus broadcasts a status change
func (h *EventHub) OperationStatus(operationID, status, errMsg string) {
	data := map[string]any{
		"operation_id": operationID,
		"status":       status,
	}
	if errMsg != "" {
		data["error"] = errMsg
	}
	h.Broadcast(&Event{
		Type:      EventOperationStatus,
		ID:        operationID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// GetClientCount returns the number of connected clients
func (h *EventHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleSSE streams events until the client disconnects. ?operation=<id>
// limits the stream to one operation.
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := NewClient(ulid.Make().String())
	if operationID := c.Query("operation"); operationID != "" {
		client.Subscribe(operationID)
	}

	h.RegisterClient(client)
	defer h.UnregisterClient(client.ID)

	if !writeEvent(c, &Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data:      map[string]any{"client_id": client.ID},
	}) {
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event := <-client.Channel:
			if !writeEvent(c, event) {
				return
			}
		case <-ticker.C:
			// comment lines keep proxies from closing idle streams
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

// writeEvent writes one SSE frame, returning false once the client is gone.
func writeEvent(c *gin.Context, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Str("event", string(event.Type)).Msg("failed to encode event")
		return true
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return false
	}
	c.Writer.Flush()
	return true
}

// calculatePercentage calculates percentage with bounds checking
func calculatePercentage(current, total int) int {
	if total <= 0 {
		return 0
	}
	percentage := (current * 100) / total
	if percentage > 100 {
		return 100
	}
	return percentage
}
