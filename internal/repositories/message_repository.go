package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"session-service/internal/models"
)

const messageColumns = `id, session_id, sender_id, content, created_at`

// MessageRepository defines interactions for session chat messages.
// created_at is assigned by the database and is the history cursor key.
type MessageRepository interface {
	CreateSessionMessage(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error)
	ListBySessionBefore(ctx context.Context, sessionID int, before *time.Time, limit int) ([]models.SessionMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateSessionMessage stores a message with a server-assigned timestamp.
func (r *MessageRepo) CreateSessionMessage(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error) {
	var msg models.SessionMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO session_messages (session_id, sender_id, content)
        VALUES ($1, $2, $3) RETURNING `+messageColumns, sessionID, senderID, content).StructScan(&msg)
	return msg, err
}

// ListBySessionBefore returns messages in descending created_at order.
func (r *MessageRepo) ListBySessionBefore(ctx context.Context, sessionID int, before *time.Time, limit int) ([]models.SessionMessage, error) {
	var msgs []models.SessionMessage
	if before == nil {
		err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM session_messages
            WHERE session_id=$1 ORDER BY created_at DESC LIMIT $2`, sessionID, limit)
		return msgs, err
	}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM session_messages
        WHERE session_id=$1 AND created_at < $2 ORDER BY created_at DESC LIMIT $3`, sessionID, *before, limit)
	return msgs, err
}
