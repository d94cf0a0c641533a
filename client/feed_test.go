package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/jyej0a/mysns/internal/model"
)

// =============================================================================
// FAKE SERVER
// =============================================================================

// fakeFeedServer serves /posts pages from an in-memory slice and lets
// tests script the like/unlike endpoints.
type fakeFeedServer struct {
	posts []model.Post

	likeStatus   int // 0 means 200
	unlikeStatus int

	likeCalls   int
	unlikeCalls int
	listCalls   int

	failNextList bool
}

func (s *fakeFeedServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		s.listCalls++
		if s.failNextList {
			s.failNextList = false
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"code": "INTERNAL_ERROR", "message": "boom"},
			})
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		start, end := offset, offset+limit
		if start > len(s.posts) {
			start = len(s.posts)
		}
		if end > len(s.posts) {
			end = len(s.posts)
		}
		page := s.posts[start:end]

		json.NewEncoder(w).Encode(model.PostListResponse{
			Posts:      page,
			Pagination: model.Pagination{Limit: limit, Offset: offset, HasMore: len(page) == limit},
		})
	})

	mux.HandleFunc("POST /likes", func(w http.ResponseWriter, r *http.Request) {
		s.likeCalls++
		status := s.likeStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if status == http.StatusConflict {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"code": "CONFLICT", "message": "Already liked this post"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	mux.HandleFunc("DELETE /likes", func(w http.ResponseWriter, r *http.Request) {
		s.unlikeCalls++
		status := s.unlikeStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	mux.HandleFunc("DELETE /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		for i := range s.posts {
			if s.posts[i].ID == id {
				s.posts = append(s.posts[:i], s.posts[i+1:]...)
				json.NewEncoder(w).Encode(map[string]string{"message": "Post deleted successfully"})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "NOT_FOUND", "message": "Post not found"},
		})
	})

	return mux
}

func feedPosts(n int) []model.Post {
	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{
			ID:       fmt.Sprintf("post-%d", i),
			ImageURL: fmt.Sprintf("https://img.example/%d.jpg", i),
			Author:   &model.UserSummary{ID: "a1", Name: "alice"},
			Comments: []model.Comment{},
		}
	}
	return posts
}

// =============================================================================
// INFINITE SCROLL
// =============================================================================

func TestFeedView_LoadMore_AppendsInOrder(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(7)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()

	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("first page: %v", err)
	}
	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("second page: %v", err)
	}

	got := feed.Posts()
	if len(got) != 6 {
		t.Fatalf("expected 6 posts after two pages, got %d", len(got))
	}
	for i, p := range got {
		if p.ID != fmt.Sprintf("post-%d", i) {
			t.Errorf("position %d: got %s", i, p.ID)
		}
	}
	if !feed.HasMore() {
		t.Error("7 posts with 6 loaded should still report more")
	}
}

func TestFeedView_LoadMore_Exhaustion(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(5)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()

	feed.LoadMore(ctx) // 3 posts, full page
	feed.LoadMore(ctx) // 2 posts, short page
	if feed.HasMore() {
		t.Error("short page should end the scroll")
	}

	calls := srv.listCalls
	feed.LoadMore(ctx)
	if srv.listCalls != calls {
		t.Error("LoadMore after exhaustion must not hit the network")
	}
}

// With post count an exact multiple of the page size the last full page
// still says hasMore, and the extra request comes back empty. The view
// absorbs that quietly.
func TestFeedView_LoadMore_ExactMultipleBoundary(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(6)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()

	feed.LoadMore(ctx)
	feed.LoadMore(ctx)
	if !feed.HasMore() {
		t.Fatal("exactly-full page reports hasMore=true by contract")
	}

	if err := feed.LoadMore(ctx); err != nil {
		t.Fatalf("empty trailing page should not error: %v", err)
	}
	if len(feed.Posts()) != 6 {
		t.Errorf("expected 6 posts, got %d", len(feed.Posts()))
	}
	if feed.HasMore() {
		t.Error("empty page finally ends the scroll")
	}
}

// A post created between two page fetches shifts the window so page two
// overlaps page one. The duplicate is dropped.
func TestFeedView_LoadMore_DeduplicatesAcrossPages(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(6)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()

	feed.LoadMore(ctx) // post-0..post-2

	// A new post lands on top, shifting every later window down one.
	srv.posts = append([]model.Post{{
		ID:       "post-new",
		ImageURL: "https://img.example/new.jpg",
		Author:   &model.UserSummary{ID: "a1", Name: "alice"},
		Comments: []model.Comment{},
	}}, srv.posts...)

	feed.LoadMore(ctx) // offset 3 now returns post-2..post-4; post-2 is a dup

	got := feed.Posts()
	seen := map[string]int{}
	for _, p := range got {
		seen[p.ID]++
	}
	for id, count := range seen {
		if count > 1 {
			t.Errorf("post %s appears %d times", id, count)
		}
	}
	if len(got) != 5 {
		t.Errorf("expected 5 unique posts (3 + 2 new), got %d", len(got))
	}
}

// =============================================================================
// ERROR LATCH
// =============================================================================

func TestFeedView_LoadMore_LatchesErrors(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(6), failNextList: true}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()

	if err := feed.LoadMore(ctx); err == nil {
		t.Fatal("expected load error")
	}
	if len(feed.Posts()) != 0 {
		t.Error("failed load must not change the collection")
	}
	if feed.HasMore() {
		t.Error("latched error must report hasMore=false to stop the observer")
	}
	if feed.Err() == nil {
		t.Error("error should be latched")
	}

	// Automatic loads while latched do nothing.
	calls := srv.listCalls
	feed.LoadMore(ctx)
	if srv.listCalls != calls {
		t.Error("LoadMore while latched must not hit the network")
	}

	// Retry clears the latch and resumes at the accumulated offset.
	if err := feed.Retry(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if feed.Err() != nil {
		t.Error("retry should clear the latched error")
	}
	if len(feed.Posts()) != 3 {
		t.Errorf("retry should load the first page, got %d posts", len(feed.Posts()))
	}
}

// Retry is for recovering from a latched error. On a feed that ran out
// of pages without one there is nothing to recover; the call must not
// re-fetch.
func TestFeedView_Retry_NoopAfterCleanExhaustion(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(5)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()

	feed.LoadMore(ctx) // 3 posts, full page
	feed.LoadMore(ctx) // 2 posts, short page ends the scroll
	if feed.HasMore() {
		t.Fatal("feed should be exhausted")
	}

	calls := srv.listCalls
	if err := feed.Retry(ctx); err != nil {
		t.Fatalf("retry on an exhausted feed should not error: %v", err)
	}
	if srv.listCalls != calls {
		t.Error("retry without a latched error must not hit the network")
	}
	if feed.HasMore() {
		t.Error("retry must not revive an exhausted feed")
	}
	if len(feed.Posts()) != 5 {
		t.Errorf("collection must be unchanged, got %d posts", len(feed.Posts()))
	}
}

// =============================================================================
// OPTIMISTIC LIKES
// =============================================================================

func TestFeedView_ToggleLike_CommitsOnSuccess(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(3)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()
	feed.LoadMore(ctx)

	if err := feed.ToggleLike(ctx, "post-1"); err != nil {
		t.Fatalf("toggle like: %v", err)
	}

	p := feed.Posts()[1]
	if !p.IsLiked || p.LikesCount != 1 {
		t.Errorf("like should stick: liked=%v count=%d", p.IsLiked, p.LikesCount)
	}
	if srv.likeCalls != 1 {
		t.Errorf("expected one POST /likes, got %d", srv.likeCalls)
	}

	// Toggling again unlikes.
	if err := feed.ToggleLike(ctx, "post-1"); err != nil {
		t.Fatalf("toggle unlike: %v", err)
	}
	p = feed.Posts()[1]
	if p.IsLiked || p.LikesCount != 0 {
		t.Errorf("unlike should stick: liked=%v count=%d", p.IsLiked, p.LikesCount)
	}
	if srv.unlikeCalls != 1 {
		t.Errorf("expected one DELETE /likes, got %d", srv.unlikeCalls)
	}
}

func TestFeedView_ToggleLike_RollsBackOnFailure(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(3), likeStatus: http.StatusInternalServerError}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()
	feed.LoadMore(ctx)

	if err := feed.ToggleLike(ctx, "post-0"); err == nil {
		t.Fatal("expected like failure")
	}

	p := feed.Posts()[0]
	if p.IsLiked || p.LikesCount != 0 {
		t.Errorf("failed like must roll back: liked=%v count=%d", p.IsLiked, p.LikesCount)
	}
}

// A 409 means the server already holds the like. The optimistic state
// was right about the outcome, so it commits.
func TestFeedView_ToggleLike_ConflictIsSuccess(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(3), likeStatus: http.StatusConflict}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()
	feed.LoadMore(ctx)

	if err := feed.ToggleLike(ctx, "post-0"); err != nil {
		t.Fatalf("conflict should read as success, got %v", err)
	}

	p := feed.Posts()[0]
	if !p.IsLiked || p.LikesCount != 1 {
		t.Errorf("conflict should commit: liked=%v count=%d", p.IsLiked, p.LikesCount)
	}
}

// =============================================================================
// REMOVAL
// =============================================================================

func TestFeedView_RemovePost_ServerFirst(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(3)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()
	feed.LoadMore(ctx)

	if err := feed.RemovePost(ctx, "post-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, p := range feed.Posts() {
		if p.ID == "post-1" {
			t.Error("removed post still displayed")
		}
	}
	if len(feed.Posts()) != 2 {
		t.Errorf("expected 2 posts, got %d", len(feed.Posts()))
	}
}

func TestFeedView_RemovePost_KeepsViewOnServerError(t *testing.T) {
	srv := &fakeFeedServer{posts: feedPosts(3)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	feed := NewFeedView(New(ts.URL, "", nil), 3)
	ctx := context.Background()
	feed.LoadMore(ctx)

	err := feed.RemovePost(ctx, "no-such-post")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(feed.Posts()) != 3 {
		t.Error("failed removal must leave the view unchanged")
	}
}
