package models

import "time"

// Post is a feed entry. Post ids are the pagination cursor for feeds:
// unlike timestamps they are unique, so id-keyed pages never duplicate.
type Post struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Caption   string    `db:"caption" json:"caption"`
	MediaURL  string    `db:"media_url" json:"media_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PostComment is one comment under a post. Comment ids key the comment
// pages the same way post ids key the feeds.
type PostComment struct {
	ID        int       `db:"id" json:"id"`
	PostID    int       `db:"post_id" json:"post_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FollowStats summarizes one user's position in the follow graph.
type FollowStats struct {
	Followers int `db:"followers" json:"followers"`
	Following int `db:"following" json:"following"`
}
