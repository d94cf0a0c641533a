package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jyej0a/mysns/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// commentRow scans a comment joined with its author.
type commentRow struct {
	ID         string    `db:"id"`
	PostID     string    `db:"post_id"`
	UserID     string    `db:"user_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
}

func (row commentRow) toComment() model.Comment {
	return model.Comment{
		ID:        row.ID,
		PostID:    row.PostID,
		UserID:    row.UserID,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
		Author: &model.UserSummary{
			ID:   row.AuthorID,
			Name: row.AuthorName,
		},
	}
}

// Create inserts a new comment and returns it with the author joined.
func (r *commentRepository) Create(ctx context.Context, postID, userID, content string) (*model.Comment, error) {
	query := `
		WITH inserted AS (
			INSERT INTO comments (post_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, content, created_at
		)
		SELECT i.id, i.post_id, i.user_id, i.content, i.created_at,
		       u.id AS author_id, u.name AS author_name
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`

	var row commentRow
	err := r.db.GetContext(ctx, &row, query, postID, userID, content)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqFKViolation {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	comment := row.toComment()
	return &comment, nil
}

// Delete removes a comment. Only the owner may delete; returns the post
// the comment belonged to.
func (r *commentRepository) Delete(ctx context.Context, commentID, userID string) (string, error) {
	var comment struct {
		PostID string `db:"post_id"`
		UserID string `db:"user_id"`
	}
	err := r.db.GetContext(ctx, &comment, `SELECT post_id, user_id FROM comments WHERE id = $1`, commentID)
	if err == sql.ErrNoRows {
		return "", model.ErrCommentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get comment: %w", err)
	}

	if comment.UserID != userID {
		return "", model.ErrNotCommentOwner
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return "", fmt.Errorf("delete comment: %w", err)
	}

	return comment.PostID, nil
}

// GetByPostID returns every comment on a post, newest first. The detail
// view shows the full thread, so there is no window here.
func (r *commentRepository) GetByPostID(ctx context.Context, postID string) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id AS author_id, u.name AS author_name
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, postID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}

	return comments, nil
}

// GetPreviews returns the n newest comments for each post in one query,
// using a window function to rank comments within each post.
func (r *commentRepository) GetPreviews(ctx context.Context, postIDs []string, n int) (map[string][]model.Comment, error) {
	result := make(map[string][]model.Comment, len(postIDs))
	if len(postIDs) == 0 || n <= 0 {
		return result, nil
	}

	query := `
		SELECT id, post_id, user_id, content, created_at, author_id, author_name
		FROM (
			SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
			       u.id AS author_id, u.name AS author_name,
			       ROW_NUMBER() OVER (
			           PARTITION BY c.post_id
			           ORDER BY c.created_at DESC, c.id DESC
			       ) AS rank
			FROM comments c
			JOIN users u ON u.id = c.user_id
			WHERE c.post_id = ANY($1)
		) ranked
		WHERE rank <= $2
		ORDER BY post_id, rank
	`

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs), n)
	if err != nil {
		return nil, fmt.Errorf("get comment previews: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.toComment())
	}

	return result, nil
}
