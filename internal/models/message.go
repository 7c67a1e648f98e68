package models

import "time"

// SessionMessage represents a chat message sent within a live session.
// CreatedAt is assigned by the database at insert time and doubles as the
// pagination cursor for history.
type SessionMessage struct {
	ID        int       `db:"id" json:"id"`
	SessionID int       `db:"session_id" json:"session_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SessionEvent is broadcasted through websockets.
type SessionEvent struct {
	Type    string          `json:"type"`
	Message *SessionMessage `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}
