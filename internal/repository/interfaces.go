package repository

import (
	"context"

	"github.com/jyej0a/mysns/internal/model"
)

type UserRepository interface {
	// UpsertByExternalID creates the user row on first authentication
	// sync, or refreshes the name on subsequent syncs.
	UpsertByExternalID(ctx context.Context, externalID, name string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	// GetStats aggregates post/follower/following counts from relation rows.
	GetStats(ctx context.Context, userID string) (model.UserStats, error)
	UpdateBio(ctx context.Context, userID string, bio *string) (*model.User, error)
	UpdateProfileImage(ctx context.Context, userID string, url, key *string) error
}

type PostRepository interface {
	Create(ctx context.Context, userID, imageURL, imageKey string, caption *string) (*model.Post, error)
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	// GetByIDs returns posts in the order of the input ids.
	GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error)
	// List returns the window [offset, offset+limit) of posts ordered by
	// created_at DESC, id DESC, optionally filtered to a single author.
	List(ctx context.Context, authorID *string, limit, offset int) ([]model.Post, error)
	// Delete removes a post (owner only) and returns its image key so the
	// stored object can be cleaned up.
	Delete(ctx context.Context, postID, userID string) (imageKey string, err error)
	Exists(ctx context.Context, postID string) (bool, error)
	// GetStats batch-aggregates like/comment counts and the viewer's like
	// flag for the given posts. Every requested id gets a map entry, so a
	// post with no likes reports 0 rather than a missing key.
	GetStats(ctx context.Context, postIDs []string, viewerID *string) (map[string]model.PostStats, error)
	Like(ctx context.Context, postID, userID string) (*model.Like, error)
	Unlike(ctx context.Context, postID, userID string) error
}

type CommentRepository interface {
	Create(ctx context.Context, postID, userID, content string) (*model.Comment, error)
	// Delete removes a comment (owner only) and returns the post it
	// belonged to.
	Delete(ctx context.Context, commentID, userID string) (postID string, err error)
	// GetByPostID returns all comments for a post, newest first.
	GetByPostID(ctx context.Context, postID string) ([]model.Comment, error)
	// GetPreviews returns the n newest comments per post for feed pages.
	GetPreviews(ctx context.Context, postIDs []string, n int) (map[string][]model.Comment, error)
}

type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	// Delete is a no-op when the edge does not exist; removing an absent
	// follow already leaves the caller in the desired state.
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error)
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error)
	// CheckFollows checks which of the given users the follower follows.
	CheckFollows(ctx context.Context, followerID string, followingIDs []string) (map[string]bool, error)
}
