package service

import (
	"context"
	"log"

	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
}

func NewFollowService(followRepo repository.FollowRepository) *FollowService {
	return &FollowService{followRepo: followRepo}
}

// Follow records a follow edge. Self-follow is rejected here before the
// insert; the database CHECK backs this up for any path that skips the
// service.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	if followerID == followingID {
		return nil, model.ErrCannotFollowSelf
	}

	follow, err := s.followRepo.Create(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}

	log.Printf("[FollowService] Follow OK: follower=%s following=%s", followerID, followingID)
	return follow, nil
}

// Unfollow removes a follow edge. Unfollowing someone the caller never
// followed succeeds.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	if err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
		return err
	}

	log.Printf("[FollowService] Unfollow OK: follower=%s following=%s", followerID, followingID)
	return nil
}

// IsFollowing reports whether follower follows following.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followingID)
}

// GetFollowers returns one page of a user's followers, with each row's
// is_following flag set relative to the viewer.
func (s *FollowService) GetFollowers(ctx context.Context, userID string, viewerID *string, limit, offset int) (*model.FollowListResponse, error) {
	limit, offset = normalizePage(limit, offset)

	users, err := s.followRepo.ListFollowers(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.markFollowed(ctx, users, viewerID); err != nil {
		return nil, err
	}

	return &model.FollowListResponse{
		Users:      users,
		Pagination: pageOf(limit, offset, len(users)),
	}, nil
}

// GetFollowing returns one page of the users someone follows, with each
// row's is_following flag set relative to the viewer.
func (s *FollowService) GetFollowing(ctx context.Context, userID string, viewerID *string, limit, offset int) (*model.FollowListResponse, error) {
	limit, offset = normalizePage(limit, offset)

	users, err := s.followRepo.ListFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.markFollowed(ctx, users, viewerID); err != nil {
		return nil, err
	}

	return &model.FollowListResponse{
		Users:      users,
		Pagination: pageOf(limit, offset, len(users)),
	}, nil
}

// markFollowed sets IsFollowing on each summary with one batched check.
func (s *FollowService) markFollowed(ctx context.Context, users []model.UserSummary, viewerID *string) error {
	if viewerID == nil || len(users) == 0 {
		return nil
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	followed, err := s.followRepo.CheckFollows(ctx, *viewerID, ids)
	if err != nil {
		return err
	}

	for i := range users {
		users[i].IsFollowing = followed[users[i].ID]
	}

	return nil
}
