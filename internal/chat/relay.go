package chat

import (
	"context"
	"errors"
	"time"

	"session-service/internal/models"
	"session-service/internal/pagination"
	"session-service/internal/repositories"
)

var (
	ErrSessionNotLive = errors.New("session is not live")
	ErrNotParticipant = errors.New("sender is not an active participant")
)

// Broadcaster fans a persisted message out to the session's subscribers.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastMessage(sessionID int, msg models.SessionMessage)
}

// Relay is the chat send/history path. Send persists first, then broadcasts
// best-effort: subscriber failures never fail the send, and a listener that
// attaches after the broadcast gets the message from History instead.
type Relay struct {
	sessions     repositories.SessionRepository
	participants repositories.ParticipantRepository
	messages     repositories.MessageRepository
	broadcaster  Broadcaster
}

// NewRelay constructs a Relay.
func NewRelay(sessions repositories.SessionRepository, participants repositories.ParticipantRepository, messages repositories.MessageRepository, broadcaster Broadcaster) *Relay {
	return &Relay{sessions: sessions, participants: participants, messages: messages, broadcaster: broadcaster}
}

// Send persists and broadcasts a chat message. The session must be LIVE and
// the sender an active participant at evaluation time; a message may still
// land microseconds before a concurrent leave or the LIVE->ENDED sweep, and
// that window is accepted rather than locked away.
func (r *Relay) Send(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error) {
	session, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return models.SessionMessage{}, err
	}
	if session.Status != models.StatusLive {
		return models.SessionMessage{}, ErrSessionNotLive
	}

	active, err := r.participants.IsActive(ctx, sessionID, senderID)
	if err != nil {
		return models.SessionMessage{}, err
	}
	if !active {
		return models.SessionMessage{}, ErrNotParticipant
	}

	msg, err := r.messages.CreateSessionMessage(ctx, sessionID, senderID, content)
	if err != nil {
		return models.SessionMessage{}, err
	}

	r.broadcaster.BroadcastMessage(sessionID, msg)
	return msg, nil
}

// History returns one cursor page of the session's messages, newest first,
// keyed on the server-assigned timestamp.
func (r *Relay) History(ctx context.Context, sessionID int, cursor *time.Time, limit int) (pagination.Page[models.SessionMessage, time.Time], error) {
	if _, err := r.sessions.GetSession(ctx, sessionID); err != nil {
		return pagination.Page[models.SessionMessage, time.Time]{}, err
	}

	return pagination.Paginate(ctx, cursor, limit,
		func(ctx context.Context, before *time.Time, limit int) ([]models.SessionMessage, error) {
			return r.messages.ListBySessionBefore(ctx, sessionID, before, limit)
		},
		func(msg models.SessionMessage) time.Time { return msg.CreatedAt },
	)
}
