package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jyej0a/mysns/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// UpsertByExternalID inserts the user on first sync; later syncs just
// refresh the display name from the identity provider.
func (r *userRepository) UpsertByExternalID(ctx context.Context, externalID, name string) (*model.User, error) {
	query := `
		INSERT INTO users (external_auth_id, name)
		VALUES ($1, $2)
		ON CONFLICT (external_auth_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, external_auth_id, name, bio, profile_image_url, profile_image_key, created_at
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, externalID, name)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, external_auth_id, name, bio, profile_image_url, profile_image_key, created_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByExternalID retrieves a user by the identity provider's subject id.
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `
		SELECT id, external_auth_id, name, bio, profile_image_url, profile_image_key, created_at
		FROM users
		WHERE external_auth_id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, externalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}

	return &u, nil
}

// GetStats aggregates the profile counters from the relation tables in a
// single round trip. Counts are derived, never stored, so they cannot
// drift from the underlying rows.
func (r *userRepository) GetStats(ctx context.Context, userID string) (model.UserStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE user_id = $1)        AS posts_count,
			(SELECT COUNT(*) FROM follows WHERE following_id = $1) AS followers_count,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)  AS following_count
	`

	var stats model.UserStats
	err := r.db.GetContext(ctx, &stats, query, userID)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("get user stats: %w", err)
	}

	return stats, nil
}

// UpdateBio sets or clears the bio. A nil bio clears the field.
func (r *userRepository) UpdateBio(ctx context.Context, userID string, bio *string) (*model.User, error) {
	query := `
		UPDATE users SET bio = $1
		WHERE id = $2
		RETURNING id, external_auth_id, name, bio, profile_image_url, profile_image_key, created_at
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, bio, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update bio: %w", err)
	}

	return &u, nil
}

// UpdateProfileImage sets or clears the profile image url and object key.
func (r *userRepository) UpdateProfileImage(ctx context.Context, userID string, url, key *string) error {
	query := `UPDATE users SET profile_image_url = $1, profile_image_key = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, url, key, userID)
	if err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}
