package model

import (
	"errors"
	"time"
)

// User represents a user in the system. Rows are created on first
// authentication sync from the external identity provider.
type User struct {
	ID              string    `db:"id" json:"id"`
	ExternalAuthID  string    `db:"external_auth_id" json:"-"`
	Name            string    `db:"name" json:"name"`
	Bio             *string   `db:"bio" json:"bio"`
	ProfileImageURL *string   `db:"profile_image_url" json:"profile_image_url"`
	ProfileImageKey *string   `db:"profile_image_key" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the lightweight author shape embedded in posts and comments.
type UserSummary struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	IsFollowing bool   `json:"is_following"`
}

// UserStats holds the aggregated counters shown on a profile.
// Computed from relation rows at read time, never stored.
type UserStats struct {
	PostsCount     int `db:"posts_count" json:"posts_count"`
	FollowersCount int `db:"followers_count" json:"followers_count"`
	FollowingCount int `db:"following_count" json:"following_count"`
}

// Profile is the GET /users/{id} response payload.
type Profile struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Bio             *string `json:"bio"`
	ProfileImageURL *string `json:"profile_image_url"`
	UserStats
	IsFollowing   bool `json:"is_following"`
	IsCurrentUser bool `json:"is_current_user"`
}

// UpdateProfileRequest is the request body for PATCH /users/{id}.
// Bio is a pointer so an explicit null clears the field.
type UpdateProfileRequest struct {
	Bio *string `json:"bio"`
}

// SyncUserRequest is the request body for POST /auth/sync.
type SyncUserRequest struct {
	Name string `json:"name"`
}

// FollowListResponse is the paginated follower/following list response.
type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// MaxBioLength is the bio limit in runes.
const MaxBioLength = 150

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrNotProfileOwner is returned when a user edits someone else's profile
	ErrNotProfileOwner = errors.New("not the owner of this profile")

	// ErrBioTooLong is returned when a bio exceeds MaxBioLength runes
	ErrBioTooLong = errors.New("bio too long")

	// ErrNameRequired is returned when a sync request carries no name
	ErrNameRequired = errors.New("name is required")
)
