package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"session-service/internal/models"
)

const commentColumns = `id, post_id, user_id, content, created_at`

// CommentRepository defines interactions for post comments. Lists are keyed
// on the comment id, same as the feeds.
type CommentRepository interface {
	CreateComment(ctx context.Context, postID, userID int, content string) (models.PostComment, error)
	ListByPostBefore(ctx context.Context, postID int, before *int, limit int) ([]models.PostComment, error)
}

// CommentRepo is a sqlx-backed implementation.
type CommentRepo struct {
	db *sqlx.DB
}

// NewCommentRepo constructs a CommentRepo.
func NewCommentRepo(db *sqlx.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// CreateComment persists a comment under a post.
func (r *CommentRepo) CreateComment(ctx context.Context, postID, userID int, content string) (models.PostComment, error) {
	var comment models.PostComment
	err := r.db.QueryRowxContext(ctx, `INSERT INTO post_comments (post_id, user_id, content)
        VALUES ($1, $2, $3) RETURNING `+commentColumns, postID, userID, content).StructScan(&comment)
	return comment, err
}

// ListByPostBefore returns a post's comments in descending id order.
func (r *CommentRepo) ListByPostBefore(ctx context.Context, postID int, before *int, limit int) ([]models.PostComment, error) {
	var comments []models.PostComment
	if before == nil {
		err := r.db.SelectContext(ctx, &comments, `SELECT `+commentColumns+` FROM post_comments
            WHERE post_id=$1 ORDER BY id DESC LIMIT $2`, postID, limit)
		return comments, err
	}
	err := r.db.SelectContext(ctx, &comments, `SELECT `+commentColumns+` FROM post_comments
        WHERE post_id=$1 AND id < $2 ORDER BY id DESC LIMIT $3`, postID, *before, limit)
	return comments, err
}
