package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"session-service/internal/mocks"
	"session-service/internal/models"
	"session-service/internal/repositories"
)

func setupSessionRouter(handler *SessionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/groups/:group_id/sessions", handler.CreateSession)
	r.GET("/groups/:group_id/sessions", handler.ListSessions)
	r.POST("/sessions/:session_id/join", handler.JoinSession)
	r.POST("/sessions/:session_id/leave", handler.LeaveSession)
	r.GET("/sessions/:session_id/participants", handler.ListParticipants)
	return r
}

func TestCreateSessionSuccess(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewSessionHandler(sessionRepo, new(mocks.ParticipantRepositoryMock), groupRepo, nil, nil)
	router := setupSessionRouter(handler)

	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	groupRepo.On("GetGroup", mock.Anything, 3).Return(models.Group{ID: 3, Name: "g"}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 3, 1).Return(true, nil).Once()
	sessionRepo.On("CreateSession", mock.Anything, 3, "jam", "", start, 60, 1).
		Return(models.Session{ID: 9, GroupID: 3, Title: "jam", StartTime: start, DurationMinutes: 60, Status: models.StatusUpcoming, CreatedBy: 1}, nil).Once()

	body := fmt.Sprintf(`{"title":"jam","start_time":%q,"duration_minutes":60}`, start.Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/groups/3/sessions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.StatusUpcoming, resp.Status)
	sessionRepo.AssertExpectations(t)
	groupRepo.AssertExpectations(t)
}

func TestCreateSessionStartTimeInPast(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewSessionHandler(new(mocks.SessionRepositoryMock), new(mocks.ParticipantRepositoryMock), groupRepo, nil, nil)
	router := setupSessionRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 3).Return(models.Group{ID: 3}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 3, 1).Return(true, nil).Once()

	start := time.Now().Add(-time.Minute)
	body := fmt.Sprintf(`{"title":"jam","start_time":%q,"duration_minutes":60}`, start.Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/groups/3/sessions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionGroupNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewSessionHandler(new(mocks.SessionRepositoryMock), new(mocks.ParticipantRepositoryMock), groupRepo, nil, nil)
	router := setupSessionRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 99).Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	start := time.Now().Add(time.Hour)
	body := fmt.Sprintf(`{"title":"jam","start_time":%q,"duration_minutes":60}`, start.Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/groups/99/sessions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionNotAMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewSessionHandler(new(mocks.SessionRepositoryMock), new(mocks.ParticipantRepositoryMock), groupRepo, nil, nil)
	router := setupSessionRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 3).Return(models.Group{ID: 3}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 3, 1).Return(false, nil).Once()

	start := time.Now().Add(time.Hour)
	body := fmt.Sprintf(`{"title":"jam","start_time":%q,"duration_minutes":60}`, start.Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/groups/3/sessions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListSessionsPage(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	handler := NewSessionHandler(sessionRepo, new(mocks.ParticipantRepositoryMock), new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{ID: 3, GroupID: 3, StartTime: base.Add(3 * time.Hour)},
		{ID: 2, GroupID: 3, StartTime: base.Add(2 * time.Hour)},
		{ID: 1, GroupID: 3, StartTime: base.Add(1 * time.Hour)},
	}
	sessionRepo.On("ListByGroupBefore", mock.Anything, 3, (*time.Time)(nil), 3).Return(sessions, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/3/sessions?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items      []models.Session `json:"items"`
		NextCursor *time.Time       `json:"next_cursor"`
		HasNext    bool             `json:"has_next"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Items, 2)
	assert.True(t, resp.HasNext)
	require.NotNil(t, resp.NextCursor)
	assert.True(t, resp.NextCursor.Equal(base.Add(2*time.Hour)))
	sessionRepo.AssertExpectations(t)
}

func TestListSessionsInvalidLimit(t *testing.T) {
	handler := NewSessionHandler(new(mocks.SessionRepositoryMock), new(mocks.ParticipantRepositoryMock), new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/groups/3/sessions?limit=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinSessionSuccess(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewSessionHandler(sessionRepo, participantRepo, new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	sessionRepo.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusLive}, nil).Once()
	participantRepo.On("Join", mock.Anything, 5, 1).Return(models.Participant{ID: 11, SessionID: 5, UserID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/sessions/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	sessionRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
}

func TestJoinSessionAlreadyJoined(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewSessionHandler(sessionRepo, participantRepo, new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	sessionRepo.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusLive}, nil).Once()
	participantRepo.On("Join", mock.Anything, 5, 1).Return(models.Participant{}, repositories.ErrAlreadyJoined).Once()

	req := httptest.NewRequest(http.MethodPost, "/sessions/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestJoinSessionEnded(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewSessionHandler(sessionRepo, participantRepo, new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	sessionRepo.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusEnded}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/sessions/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	participantRepo.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinSessionNotFound(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	handler := NewSessionHandler(sessionRepo, new(mocks.ParticipantRepositoryMock), new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	sessionRepo.On("GetSession", mock.Anything, 99).Return(models.Session{}, repositories.ErrSessionNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/sessions/99/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveSessionSuccess(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewSessionHandler(sessionRepo, participantRepo, groupRepo, nil, nil)
	router := setupSessionRouter(handler)

	sessionRepo.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, GroupID: 3, Status: models.StatusLive}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 3, 1).Return(true, nil).Once()
	participantRepo.On("Leave", mock.Anything, 5, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/sessions/5/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	participantRepo.AssertExpectations(t)
}

func TestLeaveSessionNotJoined(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewSessionHandler(sessionRepo, participantRepo, groupRepo, nil, nil)
	router := setupSessionRouter(handler)

	sessionRepo.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, GroupID: 3, Status: models.StatusLive}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 3, 1).Return(true, nil).Once()
	participantRepo.On("Leave", mock.Anything, 5, 1).Return(repositories.ErrNotJoined).Once()

	req := httptest.NewRequest(http.MethodPost, "/sessions/5/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListParticipantsPage(t *testing.T) {
	sessionRepo := new(mocks.SessionRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := NewSessionHandler(sessionRepo, participantRepo, new(mocks.GroupRepositoryMock), nil, nil)
	router := setupSessionRouter(handler)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	participants := []models.Participant{
		{ID: 2, SessionID: 5, UserID: 8, JoinedAt: base.Add(2 * time.Minute)},
		{ID: 1, SessionID: 5, UserID: 7, JoinedAt: base.Add(1 * time.Minute)},
	}

	sessionRepo.On("GetSession", mock.Anything, 5).Return(models.Session{ID: 5, Status: models.StatusLive}, nil).Once()
	participantRepo.On("ListActiveBefore", mock.Anything, 5, (*time.Time)(nil), 3).Return(participants, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/sessions/5/participants?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items   []models.Participant `json:"items"`
		HasNext bool                 `json:"has_next"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Items, 2)
	assert.False(t, resp.HasNext)
	participantRepo.AssertExpectations(t)
}
