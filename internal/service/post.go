package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"unicode/utf8"

	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/queue"
	"github.com/jyej0a/mysns/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	media       *MediaService
	publisher   queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	media *MediaService,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		media:       media,
		publisher:   publisher,
	}
}

// Create validates, uploads the image, stores the post and publishes an
// event so the recent-posts index picks it up.
func (s *PostService) Create(ctx context.Context, userID, externalID string, caption *string, file multipart.File, header *multipart.FileHeader) (*model.Post, error) {
	if caption != nil && utf8.RuneCountInString(*caption) > model.MaxCaptionLength {
		return nil, model.ErrCaptionTooLong
	}

	upload, err := s.media.UploadPostImage(ctx, externalID, file, header)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, userID, upload.URL, upload.Key, caption)
	if err != nil {
		// The row never landed; remove the stored object.
		s.media.DeleteObject(ctx, upload.Key)
		return nil, fmt.Errorf("create post: %w", err)
	}

	// Publish after commit. A lost event only delays the index; readers
	// fall back to the database.
	event := queue.NewPostCreatedEvent(post.ID, userID, post.CreatedAt)
	msgID, err := s.publisher.Publish(ctx, queue.StreamFeed, event)
	if err != nil {
		log.Printf("[PostService] Failed to publish PostCreated event: post=%s err=%v", post.ID, err)
	} else {
		log.Printf("[PostService] Published PostCreated: post=%s msgID=%s", post.ID, msgID)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		post.Author = &model.UserSummary{ID: author.ID, Name: author.Name}
	}
	post.Comments = []model.Comment{}

	return post, nil
}

// GetDetail retrieves one post with its aggregates and the full comment
// thread.
func (s *PostService) GetDetail(ctx context.Context, postID string, viewerID *string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	stats, err := s.postRepo.GetStats(ctx, []string{postID}, viewerID)
	if err != nil {
		return nil, err
	}
	if st, ok := stats[postID]; ok {
		post.LikesCount = st.LikesCount
		post.CommentsCount = st.CommentsCount
		post.IsLiked = st.IsLiked
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments

	return post, nil
}

// Delete removes a post (owner only), cleans up its stored image and
// publishes an event to evict it from the recent-posts index.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	imageKey, err := s.postRepo.Delete(ctx, postID, userID)
	if err != nil {
		return err
	}

	s.media.DeleteObject(ctx, imageKey)

	event := queue.NewPostDeletedEvent(postID, userID)
	msgID, err := s.publisher.Publish(ctx, queue.StreamFeed, event)
	if err != nil {
		log.Printf("[PostService] Failed to publish PostDeleted event: post=%s err=%v", postID, err)
	} else {
		log.Printf("[PostService] Published PostDeleted: post=%s msgID=%s", postID, msgID)
	}

	return nil
}

// Like records a like edge. A repeat like surfaces ErrAlreadyLiked so
// the transport can answer 409 and the client can reconcile.
func (s *PostService) Like(ctx context.Context, postID, userID string) (*model.Like, error) {
	like, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	log.Printf("[PostService] Like OK: post=%s user=%s", postID, userID)
	return like, nil
}

// Unlike removes a like edge. Unliking a post the caller never liked
// succeeds: the end state is identical either way.
func (s *PostService) Unlike(ctx context.Context, postID, userID string) error {
	if err := s.postRepo.Unlike(ctx, postID, userID); err != nil {
		return err
	}

	log.Printf("[PostService] Unlike OK: post=%s user=%s", postID, userID)
	return nil
}
