package service

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// Create validates and stores a comment. Content must be non-blank
// after trimming and within the rune limit; the stored content keeps
// the caller's original whitespace.
func (s *CommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrContentRequired
	}
	if utf8.RuneCountInString(req.Content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	comment, err := s.commentRepo.Create(ctx, req.PostID, userID, req.Content)
	if err != nil {
		return nil, err
	}

	log.Printf("[CommentService] Create OK: comment=%s post=%s user=%s", comment.ID, req.PostID, userID)
	return comment, nil
}

// Delete removes a comment owned by the caller.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	postID, err := s.commentRepo.Delete(ctx, commentID, userID)
	if err != nil {
		return err
	}

	log.Printf("[CommentService] Delete OK: comment=%s post=%s user=%s", commentID, postID, userID)
	return nil
}

// GetByPostID returns the full comment thread for a post, newest first.
func (s *CommentService) GetByPostID(ctx context.Context, postID string) ([]model.Comment, error) {
	return s.commentRepo.GetByPostID(ctx, postID)
}
