// Package client is a typed Go client for the posts API, carrying the
// optimistic interaction protocol the web frontend follows: feed views
// with de-duplicated infinite scroll and like/follow toggles that apply
// locally first and reconcile with the server afterwards.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jyej0a/mysns/internal/model"
)

// Error kinds distinguished by response status. Callers branch with
// errors.Is; the server's message rides along in the wrapping error.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidResponse flags a response body that does not match the
	// API schema. Treated as a transport failure, never applied to
	// local state.
	ErrInvalidResponse = errors.New("invalid response")
)

// Doer abstracts the HTTP client so tests can stub transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// API is a typed wrapper over the HTTP surface.
type API struct {
	baseURL string
	token   string
	doer    Doer
}

// New creates an API client. A nil doer uses http.DefaultClient. The
// token, when non-empty, is sent as a bearer credential on every call.
func New(baseURL, token string, doer Doer) *API {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &API{baseURL: baseURL, token: token, doer: doer}
}

// ListPosts fetches one page of the global feed.
func (a *API) ListPosts(ctx context.Context, limit, offset int) (*model.PostListResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp model.PostListResponse
	if err := a.do(ctx, http.MethodGet, "/posts?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	if err := validatePostList(&resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ListUserPosts fetches one page of a single author's posts.
func (a *API) ListUserPosts(ctx context.Context, authorID string, limit, offset int) (*model.PostListResponse, error) {
	q := url.Values{}
	q.Set("userId", authorID)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp model.PostListResponse
	if err := a.do(ctx, http.MethodGet, "/posts?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	if err := validatePostList(&resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetPost fetches a single post with its full comment thread.
func (a *API) GetPost(ctx context.Context, postID string) (*model.PostDetailResponse, error) {
	var resp model.PostDetailResponse
	if err := a.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Post == nil || resp.Post.ID == "" {
		return nil, fmt.Errorf("%w: post missing", ErrInvalidResponse)
	}

	return &resp, nil
}

// DeletePost removes one of the caller's posts.
func (a *API) DeletePost(ctx context.Context, postID string) error {
	return a.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, nil)
}

// Like records a like on a post. A duplicate answers ErrConflict.
func (a *API) Like(ctx context.Context, postID string) error {
	return a.do(ctx, http.MethodPost, "/likes", model.LikeRequest{PostID: postID}, nil)
}

// Unlike removes a like. Succeeds even when no like existed.
func (a *API) Unlike(ctx context.Context, postID string) error {
	q := url.Values{}
	q.Set("postId", postID)
	return a.do(ctx, http.MethodDelete, "/likes?"+q.Encode(), nil, nil)
}

// CreateComment adds a comment and returns it with the author joined.
func (a *API) CreateComment(ctx context.Context, postID, content string) (*model.Comment, error) {
	var resp struct {
		Comment *model.Comment `json:"comment"`
	}
	err := a.do(ctx, http.MethodPost, "/comments", model.CreateCommentRequest{PostID: postID, Content: content}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Comment == nil || resp.Comment.ID == "" {
		return nil, fmt.Errorf("%w: comment missing", ErrInvalidResponse)
	}
	return resp.Comment, nil
}

// DeleteComment removes one of the caller's comments.
func (a *API) DeleteComment(ctx context.Context, commentID string) error {
	return a.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(commentID), nil, nil)
}

// Follow records a follow edge. A duplicate answers ErrConflict.
func (a *API) Follow(ctx context.Context, followingID string) error {
	return a.do(ctx, http.MethodPost, "/follows", model.FollowRequest{FollowingID: followingID}, nil)
}

// Unfollow removes a follow edge. Succeeds even when no edge existed.
func (a *API) Unfollow(ctx context.Context, followingID string) error {
	q := url.Values{}
	q.Set("followingId", followingID)
	return a.do(ctx, http.MethodDelete, "/follows?"+q.Encode(), nil, nil)
}

// GetProfile fetches a user's profile with aggregated counts.
func (a *API) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var resp struct {
		User *model.Profile `json:"user"`
	}
	if err := a.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, fmt.Errorf("%w: user missing", ErrInvalidResponse)
	}
	return resp.User, nil
}

// Sync upserts the caller's user row after sign-in.
func (a *API) Sync(ctx context.Context, name string) (*model.User, error) {
	var resp struct {
		User *model.User `json:"user"`
	}
	if err := a.do(ctx, http.MethodPost, "/auth/sync", model.SyncUserRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, fmt.Errorf("%w: user missing", ErrInvalidResponse)
	}
	return resp.User, nil
}

// do issues one request and decodes the response into out (when non-nil).
func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.doer.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}

// errorFromResponse maps an error status to its kind, preserving the
// server's message.
func errorFromResponse(resp *http.Response) error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Message != "" {
		message = body.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, message)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, message)
	}
}

// validatePostList rejects list responses that violate the schema
// before any of their content reaches view state.
func validatePostList(resp *model.PostListResponse) error {
	if resp.Pagination.Limit <= 0 {
		return fmt.Errorf("%w: pagination.limit must be positive", ErrInvalidResponse)
	}
	if resp.Pagination.Offset < 0 {
		return fmt.Errorf("%w: pagination.offset must not be negative", ErrInvalidResponse)
	}
	for i := range resp.Posts {
		p := &resp.Posts[i]
		if p.ID == "" {
			return fmt.Errorf("%w: post %d missing id", ErrInvalidResponse, i)
		}
		if p.ImageURL == "" {
			return fmt.Errorf("%w: post %s missing image_url", ErrInvalidResponse, p.ID)
		}
		if p.Author == nil || p.Author.ID == "" {
			return fmt.Errorf("%w: post %s missing author", ErrInvalidResponse, p.ID)
		}
		if p.LikesCount < 0 || p.CommentsCount < 0 {
			return fmt.Errorf("%w: post %s has negative counts", ErrInvalidResponse, p.ID)
		}
	}
	return nil
}
