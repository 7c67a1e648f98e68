package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"session-service/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `id, group_id, title, description, start_time, duration_minutes, status, created_by, created_at`

// SessionRepository abstracts jamming session persistence. Status is only
// ever written through UpdateStatus, which the lifecycle scheduler owns.
type SessionRepository interface {
	CreateSession(ctx context.Context, groupID int, title, description string, startTime time.Time, durationMinutes int, createdBy int) (models.Session, error)
	GetSession(ctx context.Context, sessionID int) (models.Session, error)
	ListByGroupBefore(ctx context.Context, groupID int, before *time.Time, limit int) ([]models.Session, error)
	ListUnfinished(ctx context.Context) ([]models.Session, error)
	UpdateStatus(ctx context.Context, sessionID int, from, to models.SessionStatus) (bool, error)
}

// SessionRepo is a sqlx implementation of SessionRepository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateSession persists a new session in UPCOMING state.
func (r *SessionRepo) CreateSession(ctx context.Context, groupID int, title, description string, startTime time.Time, durationMinutes int, createdBy int) (models.Session, error) {
	var session models.Session
	err := r.db.QueryRowxContext(ctx, `INSERT INTO jamming_sessions (group_id, title, description, start_time, duration_minutes, created_by)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+sessionColumns,
		groupID, title, description, startTime, durationMinutes, createdBy).StructScan(&session)
	return session, err
}

// GetSession fetches a session by id.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID int) (models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `SELECT `+sessionColumns+` FROM jamming_sessions WHERE id=$1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	return session, err
}

// ListByGroupBefore returns sessions of a group in descending start_time
// order. A nil cursor starts from the newest.
func (r *SessionRepo) ListByGroupBefore(ctx context.Context, groupID int, before *time.Time, limit int) ([]models.Session, error) {
	var sessions []models.Session
	if before == nil {
		err := r.db.SelectContext(ctx, &sessions, `SELECT `+sessionColumns+` FROM jamming_sessions
            WHERE group_id=$1 ORDER BY start_time DESC LIMIT $2`, groupID, limit)
		return sessions, err
	}
	err := r.db.SelectContext(ctx, &sessions, `SELECT `+sessionColumns+` FROM jamming_sessions
        WHERE group_id=$1 AND start_time < $2 ORDER BY start_time DESC LIMIT $3`, groupID, *before, limit)
	return sessions, err
}

// ListUnfinished returns every session not yet ENDED, for the scheduler sweep.
func (r *SessionRepo) ListUnfinished(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `SELECT `+sessionColumns+` FROM jamming_sessions
        WHERE status <> $1 ORDER BY id`, models.StatusEnded)
	return sessions, err
}

// UpdateStatus advances a session's status with a compare-and-set, so a
// transition only applies from the status it was computed against. Returns
// whether the update took effect.
func (r *SessionRepo) UpdateStatus(ctx context.Context, sessionID int, from, to models.SessionStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE jamming_sessions SET status=$3 WHERE id=$1 AND status=$2`, sessionID, from, to)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
