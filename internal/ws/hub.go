package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"session-service/internal/models"
	"session-service/internal/observability"
)

// Client wraps one subscriber connection. All writes go through WriteJSON,
// which serializes them: hub broadcasts run on the sending user's goroutine
// while the read loop writes error frames, and gorilla/websocket does not
// allow concurrent writers on one connection.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// WriteJSON writes one frame, serialized against other writers.
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// ReadMessage reads the next frame. Reads have a single owner (the read
// loop), so no locking is needed.
func (c *Client) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Hub maintains the active websocket subscribers of each session channel.
// There is no replay: a connection only sees messages broadcast after it
// was added, everything earlier is served by the history endpoint.
type Hub struct {
	rooms    map[int]map[*Client]bool
	connInfo map[int]map[*Client]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*Client]bool),
		connInfo: make(map[int]map[*Client]ConnInfo),
	}
}

// AddClient registers a websocket connection on a session channel and
// returns the client whose writes are serialized with hub broadcasts.
func (h *Hub) AddClient(sessionID int, conn *websocket.Conn, info ConnInfo) *Client {
	client := &Client{conn: conn}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[sessionID]; !ok {
		h.rooms[sessionID] = make(map[*Client]bool)
	}
	h.rooms[sessionID][client] = true
	if _, ok := h.connInfo[sessionID]; !ok {
		h.connInfo[sessionID] = make(map[*Client]ConnInfo)
	}
	h.connInfo[sessionID][client] = info
	return client
}

// RemoveClient removes a client from a session channel.
func (h *Hub) RemoveClient(sessionID int, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[sessionID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	if infos, ok := h.connInfo[sessionID]; ok {
		delete(infos, client)
		if len(infos) == 0 {
			delete(h.connInfo, sessionID)
		}
	}
}

// BroadcastMessage fans a persisted message out to all current subscribers
// of the session. Delivery is best-effort: a failed write closes that
// connection and never affects the others or the sender's result.
func (h *Hub) BroadcastMessage(sessionID int, msg models.SessionMessage) {
	h.broadcast(sessionID, models.SessionEvent{Type: "message", Message: &msg})
}

func (h *Hub) broadcast(sessionID int, event models.SessionEvent) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[sessionID]))
	for client := range h.rooms[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteJSON(event); err != nil {
			log.Printf("websocket write error: %v", err)
			client.Close()
			h.publishWSError(sessionID, client, err)
			h.RemoveClient(sessionID, client)
		}
	}
}

func (h *Hub) publishWSError(sessionID int, client *Client, err error) {
	info, ok := h.getConnInfo(sessionID, client)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"session_id":  sessionID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.EventHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.sessions", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(sessionID int, client *Client) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[sessionID]; ok {
		info, exists := infos[client]
		return info, exists
	}
	return ConnInfo{}, false
}
