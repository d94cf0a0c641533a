package service

import (
	"context"

	"github.com/jyej0a/mysns/internal/cache"
	"github.com/jyej0a/mysns/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on the repository INTERFACES, so tests swap in mocks
// whose behavior each test defines through function fields. A nil field
// falls back to an empty-success default.

type mockUserRepo struct {
	upsertByExternalIDFn func(ctx context.Context, externalID, name string) (*model.User, error)
	getByIDFn            func(ctx context.Context, id string) (*model.User, error)
	getByExternalIDFn    func(ctx context.Context, externalID string) (*model.User, error)
	getStatsFn           func(ctx context.Context, userID string) (model.UserStats, error)
	updateBioFn          func(ctx context.Context, userID string, bio *string) (*model.User, error)
	updateProfileImageFn func(ctx context.Context, userID string, url, key *string) error
}

func (m *mockUserRepo) UpsertByExternalID(ctx context.Context, externalID, name string) (*model.User, error) {
	if m.upsertByExternalIDFn != nil {
		return m.upsertByExternalIDFn(ctx, externalID, name)
	}
	return &model.User{ID: "u1", ExternalAuthID: externalID, Name: name}, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.User{ID: id, Name: "someone"}, nil
}

func (m *mockUserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	if m.getByExternalIDFn != nil {
		return m.getByExternalIDFn(ctx, externalID)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepo) GetStats(ctx context.Context, userID string) (model.UserStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, userID)
	}
	return model.UserStats{}, nil
}

func (m *mockUserRepo) UpdateBio(ctx context.Context, userID string, bio *string) (*model.User, error) {
	if m.updateBioFn != nil {
		return m.updateBioFn(ctx, userID, bio)
	}
	return &model.User{ID: userID, Bio: bio}, nil
}

func (m *mockUserRepo) UpdateProfileImage(ctx context.Context, userID string, url, key *string) error {
	if m.updateProfileImageFn != nil {
		return m.updateProfileImageFn(ctx, userID, url, key)
	}
	return nil
}

type mockPostRepo struct {
	createFn   func(ctx context.Context, userID, imageURL, imageKey string, caption *string) (*model.Post, error)
	getByIDFn  func(ctx context.Context, postID string) (*model.Post, error)
	getByIDsFn func(ctx context.Context, postIDs []string) ([]model.Post, error)
	listFn     func(ctx context.Context, authorID *string, limit, offset int) ([]model.Post, error)
	deleteFn   func(ctx context.Context, postID, userID string) (string, error)
	existsFn   func(ctx context.Context, postID string) (bool, error)
	getStatsFn func(ctx context.Context, postIDs []string, viewerID *string) (map[string]model.PostStats, error)
	likeFn     func(ctx context.Context, postID, userID string) (*model.Like, error)
	unlikeFn   func(ctx context.Context, postID, userID string) error
}

func (m *mockPostRepo) Create(ctx context.Context, userID, imageURL, imageKey string, caption *string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, imageURL, imageKey, caption)
	}
	return &model.Post{ID: "p1", UserID: userID, ImageURL: imageURL, ImageKey: imageKey, Caption: caption}, nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepo) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	posts := make([]model.Post, len(postIDs))
	for i, id := range postIDs {
		posts[i] = model.Post{ID: id, Author: &model.UserSummary{ID: "a1", Name: "author"}}
	}
	return posts, nil
}

func (m *mockPostRepo) List(ctx context.Context, authorID *string, limit, offset int) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, authorID, limit, offset)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepo) Delete(ctx context.Context, postID, userID string) (string, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return "", model.ErrPostNotFound
}

func (m *mockPostRepo) Exists(ctx context.Context, postID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return false, nil
}

func (m *mockPostRepo) GetStats(ctx context.Context, postIDs []string, viewerID *string) (map[string]model.PostStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, postIDs, viewerID)
	}
	stats := make(map[string]model.PostStats, len(postIDs))
	for _, id := range postIDs {
		stats[id] = model.PostStats{}
	}
	return stats, nil
}

func (m *mockPostRepo) Like(ctx context.Context, postID, userID string) (*model.Like, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return &model.Like{PostID: postID, UserID: userID}, nil
}

func (m *mockPostRepo) Unlike(ctx context.Context, postID, userID string) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return nil
}

type mockCommentRepo struct {
	createFn      func(ctx context.Context, postID, userID, content string) (*model.Comment, error)
	deleteFn      func(ctx context.Context, commentID, userID string) (string, error)
	getByPostIDFn func(ctx context.Context, postID string) ([]model.Comment, error)
	getPreviewsFn func(ctx context.Context, postIDs []string, n int) (map[string][]model.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, postID, userID, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, userID, content)
	}
	return &model.Comment{ID: "c1", PostID: postID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, commentID, userID string) (string, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return "", model.ErrCommentNotFound
}

func (m *mockCommentRepo) GetByPostID(ctx context.Context, postID string) ([]model.Comment, error) {
	if m.getByPostIDFn != nil {
		return m.getByPostIDFn(ctx, postID)
	}
	return []model.Comment{}, nil
}

func (m *mockCommentRepo) GetPreviews(ctx context.Context, postIDs []string, n int) (map[string][]model.Comment, error) {
	if m.getPreviewsFn != nil {
		return m.getPreviewsFn(ctx, postIDs, n)
	}
	return map[string][]model.Comment{}, nil
}

type mockFollowRepo struct {
	createFn        func(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	deleteFn        func(ctx context.Context, followerID, followingID string) error
	existsFn        func(ctx context.Context, followerID, followingID string) (bool, error)
	listFollowersFn func(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error)
	listFollowingFn func(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error)
	checkFollowsFn  func(ctx context.Context, followerID string, followingIDs []string) (map[string]bool, error)
}

func (m *mockFollowRepo) Create(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followingID)
	}
	return &model.Follow{FollowerID: followerID, FollowingID: followingID}, nil
}

func (m *mockFollowRepo) Delete(ctx context.Context, followerID, followingID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followingID)
	}
	return nil
}

func (m *mockFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowRepo) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error) {
	if m.listFollowersFn != nil {
		return m.listFollowersFn(ctx, userID, limit, offset)
	}
	return []model.UserSummary{}, nil
}

func (m *mockFollowRepo) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]model.UserSummary, error) {
	if m.listFollowingFn != nil {
		return m.listFollowingFn(ctx, userID, limit, offset)
	}
	return []model.UserSummary{}, nil
}

func (m *mockFollowRepo) CheckFollows(ctx context.Context, followerID string, followingIDs []string) (map[string]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followingIDs)
	}
	result := make(map[string]bool, len(followingIDs))
	for _, id := range followingIDs {
		result[id] = false
	}
	return result, nil
}

// mockRecentIndex simulates the cached recent-posts index in memory.
type mockRecentIndex struct {
	entries []cache.PostScore // newest first
	present bool

	windowCalls int
	warmCalls   int
}

func (m *mockRecentIndex) Add(ctx context.Context, postID string, timestamp int64) error {
	m.entries = append([]cache.PostScore{{PostID: postID, Timestamp: timestamp}}, m.entries...)
	m.present = true
	return nil
}

func (m *mockRecentIndex) Remove(ctx context.Context, postID string) error {
	for i, e := range m.entries {
		if e.PostID == postID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRecentIndex) Window(ctx context.Context, offset, limit int) ([]string, error) {
	m.windowCalls++
	if offset >= len(m.entries) {
		return []string{}, nil
	}
	end := offset + limit
	if end > len(m.entries) {
		end = len(m.entries)
	}
	ids := make([]string, 0, end-offset)
	for _, e := range m.entries[offset:end] {
		ids = append(ids, e.PostID)
	}
	return ids, nil
}

func (m *mockRecentIndex) Warm(ctx context.Context, posts []cache.PostScore) error {
	m.warmCalls++
	m.entries = append([]cache.PostScore{}, posts...)
	m.present = true
	return nil
}

func (m *mockRecentIndex) Size(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockRecentIndex) Exists(ctx context.Context) (bool, error) {
	return m.present, nil
}
