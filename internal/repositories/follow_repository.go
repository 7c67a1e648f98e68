package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"session-service/internal/models"
)

// FollowRepository exposes the follow graph as plain user id lists.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID int) error
	Unfollow(ctx context.Context, followerID, followeeID int) error
	FollowingIDs(ctx context.Context, followerID int) ([]int, error)
	Stats(ctx context.Context, userID int) (models.FollowStats, error)
}

// FollowRepo is a sqlx implementation of FollowRepository.
type FollowRepo struct {
	db *sqlx.DB
}

// NewFollowRepo constructs a FollowRepo.
func NewFollowRepo(db *sqlx.DB) *FollowRepo {
	return &FollowRepo{db: db}
}

// Follow records a follow edge; following twice is a no-op.
func (r *FollowRepo) Follow(ctx context.Context, followerID, followeeID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
        ON CONFLICT (follower_id, followee_id) DO NOTHING`, followerID, followeeID)
	return err
}

// Unfollow removes the edge if present.
func (r *FollowRepo) Unfollow(ctx context.Context, followerID, followeeID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`, followerID, followeeID)
	return err
}

// FollowingIDs returns the ids of users the follower follows.
func (r *FollowRepo) FollowingIDs(ctx context.Context, followerID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT followee_id FROM follows WHERE follower_id=$1 ORDER BY followee_id`, followerID)
	return ids, err
}

// Stats counts a user's followers and followees in one query.
func (r *FollowRepo) Stats(ctx context.Context, userID int) (models.FollowStats, error) {
	var stats models.FollowStats
	err := r.db.GetContext(ctx, &stats, `SELECT
        (SELECT COUNT(*) FROM follows WHERE followee_id=$1) AS followers,
        (SELECT COUNT(*) FROM follows WHERE follower_id=$1) AS following`, userID)
	return stats, err
}
