package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jyej0a/mysns/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts a follow edge. The unique constraint and the
// follower <> following CHECK are the authoritative invariants; the
// service guards are just faster paths to the same rejection.
func (r *followRepository) Create(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	query := `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		RETURNING follower_id, following_id, created_at
	`

	var follow model.Follow
	err := r.db.GetContext(ctx, &follow, query, followerID, followingID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case pqUniqueViolation:
				return nil, model.ErrAlreadyFollowing
			case pqCheckViolation:
				return nil, model.ErrCannotFollowSelf
			case pqFKViolation:
				return nil, model.ErrUserNotFound
			}
		}
		return nil, fmt.Errorf("insert follow: %w", err)
	}

	return &follow, nil
}

// Delete removes a follow edge. Removing an absent edge succeeds; the
// caller already is not following.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// ListFollowers returns the [offset, offset+limit) window of users who
// follow userID, most recent edge first.
func (r *followRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}

	return users, nil
}

// ListFollowing returns the [offset, offset+limit) window of users that
// userID follows, most recent edge first.
func (r *followRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.name
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}

	return users, nil
}

// CheckFollows batch-checks which of the given users the follower
// follows. One query with ANY($2), not N probes.
func (r *followRepository) CheckFollows(ctx context.Context, followerID string, followingIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(followingIDs))
	for _, id := range followingIDs {
		result[id] = false
	}
	if len(followingIDs) == 0 {
		return result, nil
	}

	query := `SELECT following_id FROM follows WHERE follower_id = $1 AND following_id = ANY($2)`
	var followedIDs []string
	err := r.db.SelectContext(ctx, &followedIDs, query, followerID, pq.Array(followingIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}
