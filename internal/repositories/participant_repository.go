package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"session-service/internal/models"
)

var (
	ErrAlreadyJoined = errors.New("user already has an active participation")
	ErrNotJoined     = errors.New("user has no active participation")
)

const participantColumns = `id, session_id, user_id, joined_at, left_at`

// ParticipantRepository tracks who is actively in a session. "Active" means
// a row with left_at still null.
type ParticipantRepository interface {
	Join(ctx context.Context, sessionID, userID int) (models.Participant, error)
	Leave(ctx context.Context, sessionID, userID int) error
	IsActive(ctx context.Context, sessionID, userID int) (bool, error)
	ListActiveBefore(ctx context.Context, sessionID int, before *time.Time, limit int) ([]models.Participant, error)
}

// ParticipantRepo is a sqlx implementation of ParticipantRepository.
type ParticipantRepo struct {
	db *sqlx.DB
}

// NewParticipantRepo constructs a ParticipantRepo.
func NewParticipantRepo(db *sqlx.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// Join inserts a new active row unless one already exists. The insert is
// conditional and the partial unique index on (session_id, user_id) enforces
// uniqueness when two joins race past the NOT EXISTS check.
func (r *ParticipantRepo) Join(ctx context.Context, sessionID, userID int) (models.Participant, error) {
	var participant models.Participant
	err := r.db.QueryRowxContext(ctx, `INSERT INTO jamming_participants (session_id, user_id)
        SELECT $1, $2
        WHERE NOT EXISTS (
            SELECT 1 FROM jamming_participants WHERE session_id=$1 AND user_id=$2 AND left_at IS NULL
        )
        RETURNING `+participantColumns, sessionID, userID).StructScan(&participant)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrAlreadyJoined
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.Participant{}, ErrAlreadyJoined
	}
	return participant, err
}

// Leave stamps left_at on the active row. Rows are never deleted, so a
// re-join later creates a fresh row.
func (r *ParticipantRepo) Leave(ctx context.Context, sessionID, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE jamming_participants SET left_at = NOW()
        WHERE session_id=$1 AND user_id=$2 AND left_at IS NULL`, sessionID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotJoined
	}
	return nil
}

// IsActive reports whether the user currently has an active row.
func (r *ParticipantRepo) IsActive(ctx context.Context, sessionID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(
        SELECT 1 FROM jamming_participants WHERE session_id=$1 AND user_id=$2 AND left_at IS NULL)`, sessionID, userID)
	return exists, err
}

// ListActiveBefore returns active participants in descending joined_at order.
func (r *ParticipantRepo) ListActiveBefore(ctx context.Context, sessionID int, before *time.Time, limit int) ([]models.Participant, error) {
	var participants []models.Participant
	if before == nil {
		err := r.db.SelectContext(ctx, &participants, `SELECT `+participantColumns+` FROM jamming_participants
            WHERE session_id=$1 AND left_at IS NULL ORDER BY joined_at DESC LIMIT $2`, sessionID, limit)
		return participants, err
	}
	err := r.db.SelectContext(ctx, &participants, `SELECT `+participantColumns+` FROM jamming_participants
        WHERE session_id=$1 AND left_at IS NULL AND joined_at < $2 ORDER BY joined_at DESC LIMIT $3`, sessionID, *before, limit)
	return participants, err
}
