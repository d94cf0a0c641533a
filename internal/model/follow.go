package model

import (
	"errors"
	"time"
)

// Follow is a directed edge in the follow graph. At most one edge exists
// per ordered pair; follower and following are never the same user.
type Follow struct {
	FollowerID  string    `db:"follower_id" json:"follower_id"`
	FollowingID string    `db:"following_id" json:"following_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FollowRequest is the request body for POST /follows.
type FollowRequest struct {
	FollowingID string `json:"followingId"`
}

// LikeRequest is the request body for POST /likes.
type LikeRequest struct {
	PostID string `json:"postId"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
