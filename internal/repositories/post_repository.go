package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"session-service/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, user_id, caption, media_url, created_at`

// PostRepository defines interactions for feed posts. All list methods are
// keyed on the id, which is unique and densely ordered, so id-keyed cursor
// pages never duplicate or drop a row.
type PostRepository interface {
	CreatePost(ctx context.Context, userID int, caption, mediaURL string) (models.Post, error)
	GetPost(ctx context.Context, postID int) (models.Post, error)
	ListFeedBefore(ctx context.Context, before *int, limit int) ([]models.Post, error)
	ListByUsersBefore(ctx context.Context, userIDs []int, before *int, limit int) ([]models.Post, error)
	ListByUserBefore(ctx context.Context, userID int, before *int, limit int) ([]models.Post, error)
	LikePost(ctx context.Context, postID, userID int) error
	UnlikePost(ctx context.Context, postID, userID int) error
	LikeCount(ctx context.Context, postID int) (int, error)
}

// PostRepo is a sqlx-backed implementation.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

// CreatePost persists a post.
func (r *PostRepo) CreatePost(ctx context.Context, userID int, caption, mediaURL string) (models.Post, error) {
	var post models.Post
	err := r.db.QueryRowxContext(ctx, `INSERT INTO posts (user_id, caption, media_url)
        VALUES ($1, $2, $3) RETURNING `+postColumns, userID, caption, mediaURL).StructScan(&post)
	return post, err
}

// GetPost fetches a single post.
func (r *PostRepo) GetPost(ctx context.Context, postID int) (models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, `SELECT `+postColumns+` FROM posts WHERE id=$1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	return post, err
}

// ListFeedBefore returns the global feed in descending id order.
func (r *PostRepo) ListFeedBefore(ctx context.Context, before *int, limit int) ([]models.Post, error) {
	var posts []models.Post
	if before == nil {
		err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts ORDER BY id DESC LIMIT $1`, limit)
		return posts, err
	}
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts WHERE id < $1 ORDER BY id DESC LIMIT $2`, *before, limit)
	return posts, err
}

// ListByUsersBefore returns posts authored by any of the given users, for
// the personalized feed.
func (r *PostRepo) ListByUsersBefore(ctx context.Context, userIDs []int, before *int, limit int) ([]models.Post, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var posts []models.Post
	if before == nil {
		err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts
            WHERE user_id = ANY($1) ORDER BY id DESC LIMIT $2`, pq.Array(userIDs), limit)
		return posts, err
	}
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts
        WHERE user_id = ANY($1) AND id < $2 ORDER BY id DESC LIMIT $3`, pq.Array(userIDs), *before, limit)
	return posts, err
}

// LikePost records a like; liking twice is a no-op.
func (r *PostRepo) LikePost(ctx context.Context, postID, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
        ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
	return err
}

// UnlikePost removes the like if present.
func (r *PostRepo) UnlikePost(ctx context.Context, postID, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2`, postID, userID)
	return err
}

// LikeCount returns how many users like the post.
func (r *PostRepo) LikeCount(ctx context.Context, postID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_likes WHERE post_id=$1`, postID)
	return count, err
}

// ListByUserBefore returns one user's posts in descending id order.
func (r *PostRepo) ListByUserBefore(ctx context.Context, userID int, before *int, limit int) ([]models.Post, error) {
	var posts []models.Post
	if before == nil {
		err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts
            WHERE user_id=$1 ORDER BY id DESC LIMIT $2`, userID, limit)
		return posts, err
	}
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts
        WHERE user_id=$1 AND id < $2 ORDER BY id DESC LIMIT $3`, userID, *before, limit)
	return posts, err
}
