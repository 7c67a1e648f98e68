package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"session-service/internal/cache"
	"session-service/internal/models"
	"session-service/internal/pagination"
	"session-service/internal/repositories"
	"session-service/internal/telemetry"
)

// SessionHandler manages the jamming session endpoints: create, list,
// join, leave and the participants list.
type SessionHandler struct {
	sessions     repositories.SessionRepository
	participants repositories.ParticipantRepository
	groups       repositories.GroupRepository
	memberships  *cache.MembershipCache
	audit        *telemetry.AuditEmitter
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(sessions repositories.SessionRepository, participants repositories.ParticipantRepository, groups repositories.GroupRepository, memberships *cache.MembershipCache, audit *telemetry.AuditEmitter) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		participants: participants,
		groups:       groups,
		memberships:  memberships,
		audit:        audit,
	}
}

// isGroupMember consults the cache first and falls back to the repository.
func (h *SessionHandler) isGroupMember(ctx context.Context, groupID, userID int) (bool, error) {
	if member, ok := h.memberships.Get(ctx, groupID, userID); ok {
		return member, nil
	}
	member, err := h.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	h.memberships.Set(ctx, groupID, userID, member)
	return member, nil
}

// CreateSession schedules a new session inside a group the caller belongs to.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}

	var req struct {
		Title           string    `json:"title" binding:"required"`
		Description     string    `json:"description"`
		StartTime       time.Time `json:"start_time" binding:"required"`
		DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.groups.GetGroup(c.Request.Context(), groupID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGroupNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "group not found"})
		return
	}

	member, err := h.isGroupMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	if !req.StartTime.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start time must be in the future"})
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), groupID, req.Title, req.Description, req.StartTime, req.DurationMinutes, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", fmt.Sprintf("session %d created in group %d", session.ID, groupID), requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, session)
}

// ListSessions returns one cursor page of a group's sessions, newest
// start time first.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	cursor, ok := parseTimeCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}

	page, err := pagination.Paginate(c.Request.Context(), cursor, limit,
		func(ctx context.Context, before *time.Time, limit int) ([]models.Session, error) {
			return h.sessions.ListByGroupBefore(ctx, groupID, before, limit)
		},
		func(s models.Session) time.Time { return s.StartTime },
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// JoinSession adds the caller as an active participant.
func (h *SessionHandler) JoinSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	session, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "session not found"})
		return
	}
	if session.Status == models.StatusEnded {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session has ended"})
		return
	}

	participant, err := h.participants.Join(c.Request.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyJoined) {
			c.JSON(http.StatusConflict, gin.H{"error": "already joined"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join session"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", fmt.Sprintf("user joined session %d", sessionID), requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, participant)
}

// LeaveSession stamps the caller's active participation as left.
func (h *SessionHandler) LeaveSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	session, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "session not found"})
		return
	}

	member, err := h.isGroupMember(c.Request.Context(), session.GroupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	if session.Status == models.StatusEnded {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session already ended"})
		return
	}

	if err := h.participants.Leave(c.Request.Context(), sessionID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotJoined) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not joined"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave session"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", fmt.Sprintf("user left session %d", sessionID), requestIDFromContext(c), userIDFromContext(c))
	c.Status(http.StatusNoContent)
}

// ListParticipants returns one cursor page of a session's active
// participants, most recent join first.
func (h *SessionHandler) ListParticipants(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}
	cursor, ok := parseTimeCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 20)
	if !ok {
		return
	}

	if _, err := h.sessions.GetSession(c.Request.Context(), sessionID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "session not found"})
		return
	}

	page, err := pagination.Paginate(c.Request.Context(), cursor, limit,
		func(ctx context.Context, before *time.Time, limit int) ([]models.Participant, error) {
			return h.participants.ListActiveBefore(ctx, sessionID, before, limit)
		},
		func(p models.Participant) time.Time { return p.JoinedAt },
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}

	c.JSON(http.StatusOK, page)
}
