package service

import (
	"context"
	"log"

	"github.com/jyej0a/mysns/internal/cache"
	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/repository"
)

// FeedService serves paginated post listings. The global feed reads the
// cached recent-posts index when the requested window fits inside it and
// falls back to the database otherwise; either way the rows themselves
// always come from Postgres.
type FeedService struct {
	index       cache.RecentIndex
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewFeedService(
	index cache.RecentIndex,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *FeedService {
	return &FeedService{
		index:       index,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// GetFeed returns one page of the global feed, newest first, hydrated
// with aggregates and comment previews.
func (s *FeedService) GetFeed(ctx context.Context, viewerID *string, limit, offset int) (*model.PostListResponse, error) {
	limit, offset = normalizePage(limit, offset)

	posts, err := s.windowFromIndex(ctx, limit, offset)
	if err != nil || posts == nil {
		if err != nil {
			log.Printf("[FeedService] index window failed, using database: %v", err)
		}
		posts, err = s.postRepo.List(ctx, nil, limit, offset)
		if err != nil {
			return nil, err
		}
	}

	if err := s.hydrate(ctx, posts, viewerID); err != nil {
		return nil, err
	}

	return &model.PostListResponse{
		Posts:         posts,
		Pagination:    pageOf(limit, offset, len(posts)),
		CurrentUserID: viewerID,
	}, nil
}

// GetUserPosts returns one page of a single author's posts. Profile
// pages always read the database; the index only covers the global feed.
func (s *FeedService) GetUserPosts(ctx context.Context, authorID string, viewerID *string, limit, offset int) (*model.PostListResponse, error) {
	limit, offset = normalizePage(limit, offset)

	posts, err := s.postRepo.List(ctx, &authorID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, posts, viewerID); err != nil {
		return nil, err
	}

	return &model.PostListResponse{
		Posts:         posts,
		Pagination:    pageOf(limit, offset, len(posts)),
		CurrentUserID: viewerID,
	}, nil
}

// windowFromIndex resolves the page through the recent-posts index. It
// returns nil posts (no error) when the index cannot serve this window:
// a cold index is warmed for next time, and windows past the cached cap
// go to the database. GetByIDs drops ids that no longer resolve, so a
// short page means the index holds stale ids; that page also goes to
// the database, since serving it would under-fill the window and end
// pagination early.
func (s *FeedService) windowFromIndex(ctx context.Context, limit, offset int) ([]model.Post, error) {
	exists, err := s.index.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.warmIndex(ctx)
		return nil, nil
	}

	size, err := s.index.Size(ctx)
	if err != nil {
		return nil, err
	}
	if int64(offset+limit) > size {
		return nil, nil
	}

	ids, err := s.index.Window(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(posts) < limit {
		log.Printf("[FeedService] index window stale: offset=%d limit=%d resolved=%d, using database", offset, limit, len(posts))
		return nil, nil
	}

	log.Printf("[FeedService] served from index: offset=%d limit=%d posts=%d", offset, limit, len(posts))
	return posts, nil
}

// warmIndex rebuilds the index from the newest rows. Failures are
// logged only; the caller is already falling back to the database.
func (s *FeedService) warmIndex(ctx context.Context) {
	recent, err := s.postRepo.List(ctx, nil, cache.RecentIndexCap, 0)
	if err != nil {
		log.Printf("[FeedService] warm index list failed: %v", err)
		return
	}

	scores := make([]cache.PostScore, len(recent))
	for i, p := range recent {
		scores[i] = cache.PostScore{PostID: p.ID, Timestamp: p.CreatedAt.Unix()}
	}

	if err := s.index.Warm(ctx, scores); err != nil {
		log.Printf("[FeedService] warm index failed: %v", err)
	}
}

// hydrate attaches aggregates and comment previews to a page of posts.
// Two batched queries regardless of page size.
func (s *FeedService) hydrate(ctx context.Context, posts []model.Post, viewerID *string) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	stats, err := s.postRepo.GetStats(ctx, ids, viewerID)
	if err != nil {
		return err
	}

	previews, err := s.commentRepo.GetPreviews(ctx, ids, model.FeedPreviewComments)
	if err != nil {
		return err
	}

	for i := range posts {
		st := stats[posts[i].ID]
		posts[i].LikesCount = st.LikesCount
		posts[i].CommentsCount = st.CommentsCount
		posts[i].IsLiked = st.IsLiked

		if cs, ok := previews[posts[i].ID]; ok {
			posts[i].Comments = cs
		} else {
			posts[i].Comments = []model.Comment{}
		}
	}

	return nil
}
