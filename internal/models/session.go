package models

import "time"

// SessionStatus is the lifecycle state of a jamming session.
type SessionStatus string

const (
	StatusUpcoming SessionStatus = "UPCOMING"
	StatusLive     SessionStatus = "LIVE"
	StatusEnded    SessionStatus = "ENDED"
)

// Session represents a scheduled group jamming session.
type Session struct {
	ID              int           `db:"id" json:"id"`
	GroupID         int           `db:"group_id" json:"group_id"`
	Title           string        `db:"title" json:"title"`
	Description     string        `db:"description" json:"description"`
	StartTime       time.Time     `db:"start_time" json:"start_time"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          SessionStatus `db:"status" json:"status"`
	CreatedBy       int           `db:"created_by" json:"created_by"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// EndTime is the scheduled end of the session.
func (s Session) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Participant is one join of a user into a session. A user may appear in
// several rows for the same session after leaving and re-joining, but only
// one row per (session, user) may have a null left_at.
type Participant struct {
	ID        int        `db:"id" json:"id"`
	SessionID int        `db:"session_id" json:"session_id"`
	UserID    int        `db:"user_id" json:"user_id"`
	JoinedAt  time.Time  `db:"joined_at" json:"joined_at"`
	LeftAt    *time.Time `db:"left_at" json:"left_at,omitempty"`
}
