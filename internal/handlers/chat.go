package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"session-service/internal/chat"
	"session-service/internal/models"
	"session-service/internal/pagination"
	"session-service/internal/repositories"
)

// MessageRelay is the chat send/history surface. Implemented by chat.Relay.
type MessageRelay interface {
	Send(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error)
	History(ctx context.Context, sessionID int, cursor *time.Time, limit int) (pagination.Page[models.SessionMessage, time.Time], error)
}

// ChatHandler exposes session chat over REST; the websocket path shares the
// same relay.
type ChatHandler struct {
	relay MessageRelay
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(relay MessageRelay) *ChatHandler {
	return &ChatHandler{relay: relay}
}

// PostMessage persists a chat message and fans it out to subscribers.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.relay.Send(c.Request.Context(), sessionID, c.GetInt("userID"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, chat.ErrSessionNotLive):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session is not live"})
		case errors.Is(err, chat.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "not an active participant"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetHistory returns one cursor page of the session's chat, newest first.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}
	cursor, ok := parseTimeCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 50)
	if !ok {
		return
	}

	page, err := h.relay.History(c.Request.Context(), sessionID, cursor, limit)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, page)
}
