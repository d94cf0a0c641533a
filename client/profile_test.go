package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jyej0a/mysns/internal/model"
)

type fakeFollowServer struct {
	followStatus   int // 0 means 200
	unfollowStatus int

	followCalls   int
	unfollowCalls int
}

func (s *fakeFollowServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /follows", func(w http.ResponseWriter, r *http.Request) {
		s.followCalls++
		status := s.followStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if status == http.StatusConflict {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"code": "CONFLICT", "message": "Already following this user"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	mux.HandleFunc("DELETE /follows", func(w http.ResponseWriter, r *http.Request) {
		s.unfollowCalls++
		status := s.unfollowStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	return mux
}

func someProfile() model.Profile {
	return model.Profile{
		ID:   "u2",
		Name: "bob",
		UserStats: model.UserStats{
			PostsCount:     3,
			FollowersCount: 10,
			FollowingCount: 4,
		},
	}
}

func TestProfileView_ToggleFollow_CommitsOnSuccess(t *testing.T) {
	srv := &fakeFollowServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	view := NewProfileView(New(ts.URL, "", nil), someProfile())
	ctx := context.Background()

	if err := view.ToggleFollow(ctx); err != nil {
		t.Fatalf("follow: %v", err)
	}
	p := view.Profile()
	if !p.IsFollowing || p.FollowersCount != 11 {
		t.Errorf("follow should stick: following=%v followers=%d", p.IsFollowing, p.FollowersCount)
	}

	if err := view.ToggleFollow(ctx); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	p = view.Profile()
	if p.IsFollowing || p.FollowersCount != 10 {
		t.Errorf("unfollow should stick: following=%v followers=%d", p.IsFollowing, p.FollowersCount)
	}
	if srv.followCalls != 1 || srv.unfollowCalls != 1 {
		t.Errorf("expected one follow and one unfollow call, got %d/%d", srv.followCalls, srv.unfollowCalls)
	}
}

func TestProfileView_ToggleFollow_RollsBackOnFailure(t *testing.T) {
	srv := &fakeFollowServer{followStatus: http.StatusInternalServerError}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	view := NewProfileView(New(ts.URL, "", nil), someProfile())

	if err := view.ToggleFollow(context.Background()); err == nil {
		t.Fatal("expected follow failure")
	}
	p := view.Profile()
	if p.IsFollowing || p.FollowersCount != 10 {
		t.Errorf("failed follow must roll back: following=%v followers=%d", p.IsFollowing, p.FollowersCount)
	}
}

func TestProfileView_ToggleFollow_ConflictCommits(t *testing.T) {
	srv := &fakeFollowServer{followStatus: http.StatusConflict}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	view := NewProfileView(New(ts.URL, "", nil), someProfile())

	if err := view.ToggleFollow(context.Background()); err != nil {
		t.Fatalf("conflict should read as success, got %v", err)
	}
	p := view.Profile()
	if !p.IsFollowing || p.FollowersCount != 11 {
		t.Errorf("conflict should commit: following=%v followers=%d", p.IsFollowing, p.FollowersCount)
	}
}

// Following your own profile is rejected locally: no state change, no
// network call.
func TestProfileView_ToggleFollow_RejectsSelf(t *testing.T) {
	srv := &fakeFollowServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	profile := someProfile()
	profile.IsCurrentUser = true
	view := NewProfileView(New(ts.URL, "", nil), profile)

	err := view.ToggleFollow(context.Background())
	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Fatalf("expected ErrCannotFollowSelf, got %v", err)
	}
	if srv.followCalls != 0 {
		t.Error("self-follow must not reach the network")
	}
	p := view.Profile()
	if p.IsFollowing || p.FollowersCount != 10 {
		t.Errorf("self-follow must not change state: %+v", p)
	}
}
