package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"session-service/internal/models"
	"session-service/internal/pagination"
	"session-service/internal/repositories"
	"session-service/internal/storage"
)

// PostHandler serves the feed endpoints. Feeds and comment lists page on
// the row id, which is unique, so these are the gap-free cursor surfaces.
type PostHandler struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	follows  repositories.FollowRepository
	uploader storage.Uploader
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(posts repositories.PostRepository, comments repositories.CommentRepository, follows repositories.FollowRepository, uploader storage.Uploader) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, follows: follows, uploader: uploader}
}

// CreatePost stores a post with an optional media attachment.
func (h *PostHandler) CreatePost(c *gin.Context) {
	caption := c.PostForm("caption")

	mediaURL := ""
	if file, err := c.FormFile("media"); err == nil {
		if h.uploader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read media"})
			return
		}
		defer src.Close()

		mediaURL, err = h.uploader.Upload(c.Request.Context(), file.Filename, src, file.Size, file.Header.Get("Content-Type"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not store media"})
			return
		}
	}

	if caption == "" && mediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post needs a caption or media"})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), c.GetInt("userID"), caption, mediaURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetFeed returns one cursor page of the global feed.
func (h *PostHandler) GetFeed(c *gin.Context) {
	cursor, ok := parseIntCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}

	page, err := pagination.Paginate(c.Request.Context(), cursor, limit,
		func(ctx context.Context, before *int, limit int) ([]models.Post, error) {
			return h.posts.ListFeedBefore(ctx, before, limit)
		},
		func(p models.Post) int { return p.ID },
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetFollowingFeed returns one cursor page of posts from users the caller
// follows. Following nobody yields an empty page, not an error.
func (h *PostHandler) GetFollowingFeed(c *gin.Context) {
	cursor, ok := parseIntCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}

	followedIDs, err := h.follows.FollowingIDs(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load follow graph"})
		return
	}
	if len(followedIDs) == 0 {
		c.JSON(http.StatusOK, pagination.Page[models.Post, int]{Items: []models.Post{}})
		return
	}

	page, err := pagination.Paginate(c.Request.Context(), cursor, limit,
		func(ctx context.Context, before *int, limit int) ([]models.Post, error) {
			return h.posts.ListByUsersBefore(ctx, followedIDs, before, limit)
		},
		func(p models.Post) int { return p.ID },
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetUserPosts returns one cursor page of a single user's posts.
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	cursor, ok := parseIntCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}

	page, err := pagination.Paginate(c.Request.Context(), cursor, limit,
		func(ctx context.Context, before *int, limit int) ([]models.Post, error) {
			return h.posts.ListByUserBefore(ctx, userID, before, limit)
		},
		func(p models.Post) int { return p.ID },
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateComment adds a comment under an existing post.
func (h *PostHandler) CreateComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
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

	if _, err := h.posts.GetPost(c.Request.Context(), postID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "post not found"})
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), postID, c.GetInt("userID"), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments returns one cursor page of a post's comments, newest first.
func (h *PostHandler) ListComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}
	cursor, ok := parseIntCursor(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, 20)
	if !ok {
		return
	}

	if _, err := h.posts.GetPost(c.Request.Context(), postID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "post not found"})
		return
	}

	page, err := pagination.Paginate(c.Request.Context(), cursor, limit,
		func(ctx context.Context, before *int, limit int) ([]models.PostComment, error) {
			return h.comments.ListByPostBefore(ctx, postID, before, limit)
		},
		func(comment models.PostComment) int { return comment.ID },
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// LikePost records the caller's like. Liking an already-liked post is a
// no-op, not an error.
func (h *PostHandler) LikePost(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	if _, err := h.posts.GetPost(c.Request.Context(), postID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "post not found"})
		return
	}

	if err := h.posts.LikePost(c.Request.Context(), postID, c.GetInt("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not like post"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlikePost removes the caller's like if present.
func (h *PostHandler) UnlikePost(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	if err := h.posts.UnlikePost(c.Request.Context(), postID, c.GetInt("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unlike post"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLikeCount returns how many users like a post.
func (h *PostHandler) GetLikeCount(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	if _, err := h.posts.GetPost(c.Request.Context(), postID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "post not found"})
		return
	}

	count, err := h.posts.LikeCount(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count likes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "likes": count})
}

// GetFollowStats returns a user's follower and following counts.
func (h *PostHandler) GetFollowStats(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	stats, err := h.follows.Stats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load follow stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Follow records a follow edge from the caller to the target user.
func (h *PostHandler) Follow(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")
	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	if err := h.follows.Follow(c.Request.Context(), userID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not follow user"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Unfollow removes the follow edge if present.
func (h *PostHandler) Unfollow(c *gin.Context) {
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), c.GetInt("userID"), targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfollow user"})
		return
	}
	c.Status(http.StatusNoContent)
}
