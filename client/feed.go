package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jyej0a/mysns/internal/model"
)

// FeedView holds the client-side state of an infinite-scroll feed: the
// accumulated posts, whether more pages may exist, and a latched error
// that halts automatic loading until the user retries.
//
// A FeedView belongs to a single goroutine, matching a UI event loop;
// there is no internal locking.
type FeedView struct {
	api   *API
	limit int

	posts   []model.Post
	seen    map[string]struct{}
	hasMore bool
	loading bool
	err     error
}

// NewFeedView creates an empty feed that will page with the given
// limit. A limit of 0 takes the server default page size.
func NewFeedView(api *API, limit int) *FeedView {
	if limit <= 0 {
		limit = model.DefaultPageLimit
	}
	return &FeedView{
		api:     api,
		limit:   limit,
		seen:    make(map[string]struct{}),
		hasMore: true,
	}
}

// Posts returns the accumulated posts in display order.
func (f *FeedView) Posts() []model.Post {
	return f.posts
}

// HasMore reports whether another LoadMore may yield posts. False after
// exhaustion and while an error is latched.
func (f *FeedView) HasMore() bool {
	return f.hasMore
}

// Err returns the latched load error, or nil.
func (f *FeedView) Err() error {
	return f.err
}

// LoadMore fetches the next page at offset len(posts) and appends it,
// dropping any post already displayed. A failed fetch leaves the
// collection untouched, latches the error and reports no more pages so
// a scroll observer stops firing; Retry resumes.
//
// Calling LoadMore while exhausted, latched or already loading is a
// no-op.
func (f *FeedView) LoadMore(ctx context.Context) error {
	if !f.hasMore || f.err != nil || f.loading {
		return f.err
	}

	f.loading = true
	defer func() { f.loading = false }()

	resp, err := f.api.ListPosts(ctx, f.limit, len(f.posts))
	if err != nil {
		f.err = err
		f.hasMore = false
		return err
	}

	f.append(resp.Posts)
	f.hasMore = resp.Pagination.HasMore
	return nil
}

// Retry clears a latched error and loads the next page from the
// accumulated offset. On a feed that exhausted cleanly there is nothing
// to retry; the call is a no-op.
func (f *FeedView) Retry(ctx context.Context) error {
	if f.err == nil && !f.hasMore {
		return nil
	}
	f.err = nil
	f.hasMore = true
	return f.LoadMore(ctx)
}

// append adds posts that are not yet displayed. Overlap happens when
// rows shift between page fetches (a new post pushes old ones down);
// dropping duplicates keeps one feed entry per post id.
func (f *FeedView) append(page []model.Post) {
	for _, p := range page {
		if _, dup := f.seen[p.ID]; dup {
			continue
		}
		f.seen[p.ID] = struct{}{}
		f.posts = append(f.posts, p)
	}
}

// ToggleLike flips the viewer's like on a displayed post optimistically
// and reconciles with the server: the flag and count update before the
// request, a conflict (already in the requested state) commits, and any
// other failure restores the exact prior state.
func (f *FeedView) ToggleLike(ctx context.Context, postID string) error {
	idx := f.indexOf(postID)
	if idx < 0 {
		return fmt.Errorf("post %s not in feed", postID)
	}
	post := &f.posts[idx]

	toggle := NewToggle(post.IsLiked, post.LikesCount)
	if !toggle.Begin() {
		return nil
	}
	post.IsLiked = toggle.Active
	post.LikesCount = toggle.Count

	var err error
	if toggle.Active {
		err = f.api.Like(ctx, postID)
	} else {
		err = f.api.Unlike(ctx, postID)
	}

	switch {
	case err == nil:
		toggle.Resolve()
	case errors.Is(err, ErrConflict):
		toggle.ResolveConflict()
		err = nil
	default:
		toggle.Rollback()
		post.IsLiked = toggle.Active
		post.LikesCount = toggle.Count
	}

	return err
}

// RemovePost deletes one of the viewer's posts on the server, then
// drops it from the view. Nothing changes locally until the server
// confirms.
func (f *FeedView) RemovePost(ctx context.Context, postID string) error {
	if err := f.api.DeletePost(ctx, postID); err != nil {
		return err
	}

	idx := f.indexOf(postID)
	if idx >= 0 {
		f.posts = append(f.posts[:idx], f.posts[idx+1:]...)
	}
	// The id stays in seen: a deleted post must never reappear from a
	// stale page.
	return nil
}

func (f *FeedView) indexOf(postID string) int {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			return i
		}
	}
	return -1
}
