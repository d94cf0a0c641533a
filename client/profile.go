package client

import (
	"context"
	"errors"

	"github.com/jyej0a/mysns/internal/model"
)

// ProfileView holds the client-side state of a profile page: the user
// card plus an optimistic follow toggle over the follower count.
//
// Like FeedView, a ProfileView belongs to a single goroutine.
type ProfileView struct {
	api     *API
	profile model.Profile
}

// NewProfileView wraps a fetched profile.
func NewProfileView(api *API, profile model.Profile) *ProfileView {
	return &ProfileView{api: api, profile: profile}
}

// LoadProfileView fetches a profile and wraps it.
func LoadProfileView(ctx context.Context, api *API, userID string) (*ProfileView, error) {
	profile, err := api.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewProfileView(api, *profile), nil
}

// Profile returns the current card state.
func (p *ProfileView) Profile() model.Profile {
	return p.profile
}

// ToggleFollow flips the viewer's follow of this profile optimistically
// and reconciles with the server. Following yourself is rejected before
// any state change or network call.
func (p *ProfileView) ToggleFollow(ctx context.Context) error {
	if p.profile.IsCurrentUser {
		return model.ErrCannotFollowSelf
	}

	toggle := NewToggle(p.profile.IsFollowing, p.profile.FollowersCount)
	if !toggle.Begin() {
		return nil
	}
	p.profile.IsFollowing = toggle.Active
	p.profile.FollowersCount = toggle.Count

	var err error
	if toggle.Active {
		err = p.api.Follow(ctx, p.profile.ID)
	} else {
		err = p.api.Unfollow(ctx, p.profile.ID)
	}

	switch {
	case err == nil:
		toggle.Resolve()
	case errors.Is(err, ErrConflict):
		toggle.ResolveConflict()
		err = nil
	default:
		toggle.Rollback()
		p.profile.IsFollowing = toggle.Active
		p.profile.FollowersCount = toggle.Count
	}

	return err
}
