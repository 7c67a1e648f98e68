package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"session-service/internal/auth"
	"session-service/internal/mocks"
	"session-service/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID int) string {
	t.Helper()
	claims := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// relayStub stands in for the chat relay: it records the context each send
// arrives with and broadcasts the message the way the real relay does.
type relayStub struct {
	hub     *Hub
	sendCtx chan error
}

func (s *relayStub) Send(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error) {
	s.sendCtx <- ctx.Err()
	msg := models.SessionMessage{ID: 1, SessionID: sessionID, SenderID: senderID, Content: content, CreatedAt: time.Now()}
	s.hub.BroadcastMessage(sessionID, msg)
	return msg, nil
}

func setupSocketServer(t *testing.T, hub *Hub, sessions *mocks.SessionRepositoryMock, participants *mocks.ParticipantRepositoryMock, sender MessageSender) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSessionWebSocketHandler(hub, sessions, participants, sender, auth.NewVerifier(testSecret))
	router.GET("/ws/sessions/:session_id", handler.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialSocket(t *testing.T, server *httptest.Server, sessionID string, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sessions/" + sessionID + "?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSocketInboundFrameReachesSubscribers(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	participants := new(mocks.ParticipantRepositoryMock)
	sessions.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusLive}, nil)
	participants.On("IsActive", mock.Anything, 5, 1).Return(true, nil)

	hub := NewHub()
	sender := &relayStub{hub: hub, sendCtx: make(chan error, 1)}
	server := setupSocketServer(t, hub, sessions, participants, sender)

	conn := dialSocket(t, server, "5", signToken(t, 1))
	require.NoError(t, conn.WriteJSON(map[string]string{"content": "hello"}))

	// The send must run on a context that outlives the handshake request:
	// the HTTP layer cancels the request context once the handler returns.
	select {
	case err := <-sender.sendCtx:
		assert.NoError(t, err, "send arrived with a dead context")
	case <-time.After(2 * time.Second):
		t.Fatal("inbound frame never reached the sender")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.SessionEvent
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, "message", event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hello", event.Message.Content)
	assert.Equal(t, 1, event.Message.SenderID)
}

func TestSocketHandshakeParticipantCheckError(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	participants := new(mocks.ParticipantRepositoryMock)
	sessions.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusLive}, nil)
	participants.On("IsActive", mock.Anything, 5, 1).Return(false, assert.AnError)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSessionWebSocketHandler(NewHub(), sessions, participants, nil, auth.NewVerifier(testSecret))
	router.GET("/ws/sessions/:session_id", handler.Handle)

	req := httptest.NewRequest(http.MethodGet, "/ws/sessions/5?token="+signToken(t, 1), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSocketHandshakeNotParticipant(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	participants := new(mocks.ParticipantRepositoryMock)
	sessions.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusLive}, nil)
	participants.On("IsActive", mock.Anything, 5, 1).Return(false, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSessionWebSocketHandler(NewHub(), sessions, participants, nil, auth.NewVerifier(testSecret))
	router.GET("/ws/sessions/:session_id", handler.Handle)

	req := httptest.NewRequest(http.MethodGet, "/ws/sessions/5?token="+signToken(t, 1), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBroadcastsAndErrorFramesShareOneWriter(t *testing.T) {
	hub := NewHub()

	registered := make(chan *Client, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		registered <- hub.AddClient(9, conn, ConnInfo{ConnID: "c", ConnectedAt: time.Now()})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	var client *Client
	select {
	case client = <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("server never registered the client")
	}

	// Broadcasts arrive on many sender goroutines while the read-loop side
	// writes its own frames; all of them must funnel through one writer.
	const frames = 20
	var wg sync.WaitGroup
	for i := 0; i < frames; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				hub.BroadcastMessage(9, models.SessionMessage{ID: i, SessionID: 9, Content: "m"})
				return
			}
			_ = client.WriteJSON(models.SessionEvent{Type: "error", Error: "invalid frame"})
		}(i)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for i := 0; i < frames; i++ {
		var event models.SessionEvent
		require.NoError(t, conn.ReadJSON(&event))
	}
	wg.Wait()
}
