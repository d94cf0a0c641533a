package model

import (
	"errors"
	"time"
)

// Post represents a user's post. Like and comment counts are joined
// aggregates over the relation tables, not stored columns; they always
// reflect the cardinality of the underlying rows at query time.
type Post struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	ImageKey  string    `db:"image_key" json:"-"`
	Caption   *string   `db:"caption" json:"caption"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined fields (not in posts table)
	Author        *UserSummary `json:"user,omitempty"`
	LikesCount    int          `json:"likes_count"`
	CommentsCount int          `json:"comments_count"`
	IsLiked       bool         `json:"is_liked"`
	Comments      []Comment    `json:"comments"`
}

// Like is a (post, user) edge. At most one row exists per pair, enforced
// by a unique constraint.
type Like struct {
	PostID    string    `db:"post_id" json:"post_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PostStats is the per-post aggregation result: derived counts plus
// the viewer-relative like flag.
type PostStats struct {
	LikesCount    int
	CommentsCount int
	IsLiked       bool
}

// Pagination describes the offset/limit window of a list response.
// HasMore is true iff the page came back full; a final page of exactly
// `limit` rows therefore still reports true and the next request returns
// an empty page. That is the wire contract, callers must not assume a
// full page implies remaining data.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// PostListResponse is the GET /posts response.
type PostListResponse struct {
	Posts         []Post     `json:"posts"`
	Pagination    Pagination `json:"pagination"`
	CurrentUserID *string    `json:"currentUserId"`
}

// PostDetailResponse is the GET /posts/{id} response.
type PostDetailResponse struct {
	Post          *Post   `json:"post"`
	CurrentUserID *string `json:"currentUserId"`
}

// Post constraints
const (
	MaxCaptionLength  = 2200            // runes, Instagram's limit
	MaxImageSizeBytes = 5 * 1024 * 1024 // 5MB

	DefaultPageLimit = 10
	MaxPageLimit     = 50

	// FeedPreviewComments is how many recent comments ride along with
	// each post in a feed page.
	FeedPreviewComments = 2
)

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrImageRequired  = errors.New("an image is required")
	ErrCaptionTooLong = errors.New("caption too long")
)

// Like errors
var (
	ErrAlreadyLiked = errors.New("already liked this post")
)
