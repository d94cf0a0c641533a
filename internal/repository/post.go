package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jyej0a/mysns/internal/model"
)

// pq error codes we translate into domain errors
const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
	pqFKViolation     = "23503"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow scans a post joined with its author.
type postRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	ImageURL   string    `db:"image_url"`
	ImageKey   string    `db:"image_key"`
	Caption    *string   `db:"caption"`
	CreatedAt  time.Time `db:"created_at"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
}

func (row postRow) toPost() model.Post {
	return model.Post{
		ID:        row.ID,
		UserID:    row.UserID,
		ImageURL:  row.ImageURL,
		ImageKey:  row.ImageKey,
		Caption:   row.Caption,
		CreatedAt: row.CreatedAt,
		Author: &model.UserSummary{
			ID:   row.AuthorID,
			Name: row.AuthorName,
		},
	}
}

// Create inserts a new post referencing an already-uploaded image.
func (r *postRepository) Create(ctx context.Context, userID, imageURL, imageKey string, caption *string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, image_url, image_key, caption)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, image_url, image_key, caption, created_at
	`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, imageURL, imageKey, caption)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	return &post, nil
}

// GetByID retrieves a single post with its author.
func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.image_url, p.image_key, p.caption, p.created_at,
		       u.id AS author_id, u.name AS author_name
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`

	var row postRow
	err := r.db.GetContext(ctx, &row, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := row.toPost()
	return &post, nil
}

// GetByIDs retrieves multiple posts with authors, re-ordered to match the
// input order (the caller's window came from the recent-posts index).
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT p.id, p.user_id, p.image_url, p.image_key, p.caption, p.created_at,
		       u.id AS author_id, u.name AS author_name
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ANY($1)
	`

	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	byID := make(map[string]model.Post, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toPost()
	}

	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// List returns the [offset, offset+limit) window of posts, newest first,
// id as the tie-break so pages are stable under equal timestamps. The
// query is assembled with squirrel because the author filter, limit and
// offset vary independently per call.
func (r *postRepository) List(ctx context.Context, authorID *string, limit, offset int) ([]model.Post, error) {
	builder := sq.Select(
		"p.id", "p.user_id", "p.image_url", "p.image_key", "p.caption", "p.created_at",
		"u.id AS author_id", "u.name AS author_name",
	).
		From("posts p").
		Join("users u ON u.id = p.user_id").
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar)

	if authorID != nil {
		builder = builder.Where(sq.Eq{"p.user_id": *authorID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toPost()
	}

	return posts, nil
}

// Delete removes a post. Likes and comments go with it via ON DELETE
// CASCADE; the image key is returned so the caller can clean up storage.
func (r *postRepository) Delete(ctx context.Context, postID, userID string) (string, error) {
	var imageKey string
	err := r.db.GetContext(ctx, &imageKey, `
		DELETE FROM posts WHERE id = $1 AND user_id = $2
		RETURNING image_key
	`, postID, userID)
	if err == sql.ErrNoRows {
		// Distinguish "not yours" from "gone"
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
		if exists {
			return "", model.ErrNotPostOwner
		}
		return "", model.ErrPostNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete post: %w", err)
	}

	return imageKey, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// GetStats batch-aggregates counts over the likes and comments tables and
// checks the viewer's like rows, three queries total regardless of page
// size. Every requested id is seeded with a zero entry first; a failure
// in any query propagates instead of masquerading as zero counts.
func (r *postRepository) GetStats(ctx context.Context, postIDs []string, viewerID *string) (map[string]model.PostStats, error) {
	stats := make(map[string]model.PostStats, len(postIDs))
	for _, id := range postIDs {
		stats[id] = model.PostStats{}
	}
	if len(postIDs) == 0 {
		return stats, nil
	}

	type countRow struct {
		PostID string `db:"post_id"`
		Count  int    `db:"count"`
	}

	var likeCounts []countRow
	err := r.db.SelectContext(ctx, &likeCounts, `
		SELECT post_id, COUNT(*) AS count
		FROM likes
		WHERE post_id = ANY($1)
		GROUP BY post_id
	`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	for _, row := range likeCounts {
		s := stats[row.PostID]
		s.LikesCount = row.Count
		stats[row.PostID] = s
	}

	var commentCounts []countRow
	err = r.db.SelectContext(ctx, &commentCounts, `
		SELECT post_id, COUNT(*) AS count
		FROM comments
		WHERE post_id = ANY($1)
		GROUP BY post_id
	`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	for _, row := range commentCounts {
		s := stats[row.PostID]
		s.CommentsCount = row.Count
		stats[row.PostID] = s
	}

	if viewerID != nil {
		var likedIDs []string
		err = r.db.SelectContext(ctx, &likedIDs, `
			SELECT post_id FROM likes WHERE user_id = $1 AND post_id = ANY($2)
		`, *viewerID, pq.Array(postIDs))
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("check likes: %w", err)
		}
		for _, id := range likedIDs {
			s := stats[id]
			s.IsLiked = true
			stats[id] = s
		}
	}

	return stats, nil
}

// Like inserts a like edge. Returns ErrAlreadyLiked on the unique
// constraint and ErrPostNotFound when the post is gone.
func (r *postRepository) Like(ctx context.Context, postID, userID string) (*model.Like, error) {
	query := `
		INSERT INTO likes (post_id, user_id)
		VALUES ($1, $2)
		RETURNING post_id, user_id, created_at
	`

	var like model.Like
	err := r.db.GetContext(ctx, &like, query, postID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case pqUniqueViolation:
				return nil, model.ErrAlreadyLiked
			case pqFKViolation:
				return nil, model.ErrPostNotFound
			}
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}

	return &like, nil
}

// Unlike deletes a like edge. Deleting an absent like is not an error:
// the caller already has the state it asked for.
func (r *postRepository) Unlike(ctx context.Context, postID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}
