package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"session-service/internal/auth"
	"session-service/internal/models"
	"session-service/internal/observability"
	"session-service/internal/repositories"
)

// MessageSender is the gated send path for inbound socket frames. It is
// implemented by chat.Relay.
type MessageSender interface {
	Send(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error)
}

// SessionWebSocketHandler handles session channel connections.
type SessionWebSocketHandler struct {
	hub          *Hub
	sessions     repositories.SessionRepository
	participants repositories.ParticipantRepository
	sender       MessageSender
	verifier     *auth.Verifier
}

// NewSessionWebSocketHandler constructs a SessionWebSocketHandler.
func NewSessionWebSocketHandler(hub *Hub, sessions repositories.SessionRepository, participants repositories.ParticipantRepository, sender MessageSender, verifier *auth.Verifier) *SessionWebSocketHandler {
	return &SessionWebSocketHandler{hub: hub, sessions: sessions, participants: participants, sender: sender, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundFrame is what clients push on the socket to send a chat message.
type inboundFrame struct {
	Content string `json:"content"`
}

// Handle authenticates the caller, checks they are an active participant of
// the session and upgrades the connection. Inbound frames go through the
// same gated send path as the REST endpoint.
func (h *SessionWebSocketHandler) Handle(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	ctx, span := otel.Tracer("session-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.verifier.ValidateBearer(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.sessions.GetSession(ctx, sessionID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "session not found"})
		return
	}

	active, err := h.participants.IsActive(ctx, sessionID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify participation"})
		return
	}
	if !active {
		c.JSON(http.StatusForbidden, gin.H{"error": "not an active participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	client := h.hub.AddClient(sessionID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycleEvent(ctx, "ws_connect", sessionID, info, "")

	// The request context dies when this handler returns, but the socket
	// outlives it. The read loop keeps the trace values and drops the
	// cancelation so sends keep working for the life of the connection.
	go h.readLoop(context.WithoutCancel(ctx), sessionID, client, info)
}

func (h *SessionWebSocketHandler) readLoop(ctx context.Context, sessionID int, client *Client, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.RemoveClient(sessionID, client)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycleEvent(ctx, "ws_disconnect", sessionID, info, closeReason)
		client.Close()
	}()

	for {
		_, payload, err := client.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishLifecycleEvent(ctx, "ws_error", sessionID, info, closeReason)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Content == "" {
			_ = client.WriteJSON(models.SessionEvent{Type: "error", Error: "invalid frame"})
			continue
		}

		// The relay persists and broadcasts; the sender receives their own
		// message through the broadcast like everyone else.
		if _, err := h.sender.Send(ctx, sessionID, info.UserID, frame.Content); err != nil {
			_ = client.WriteJSON(models.SessionEvent{Type: "error", Error: err.Error()})
		}
	}
}

func (h *SessionWebSocketHandler) publishLifecycleEvent(ctx context.Context, event string, sessionID int, info ConnInfo, reason string) {
	durationMS := int64(0)
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	_ = observability.PublishEvent(ctx, "ws_events.sessions", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"session_id":  sessionID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": durationMS,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.EventHeaders(info.RequestID, info.TraceID))
}
