package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jyej0a/mysns/internal/httputil"
	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/service"
	"github.com/jyej0a/mysns/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow handles POST /follows
// Records a follow edge. Self-follow is a 400, a duplicate edge a 409.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.FollowingID == "" {
		httputil.WriteBadRequest(w, "followingId is required")
		return
	}

	follow, err := h.followService.Follow(r.Context(), userID, req.FollowingID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, "Already following this user")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Follow handler: user=%s target=%s err=%v", userID, req.FollowingID, err)
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"follow":  follow,
	})
}

// Unfollow handles DELETE /follows?followingId=
// Removes a follow edge. Succeeds even when no edge existed.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followingID := r.URL.Query().Get("followingId")
	if followingID == "" {
		httputil.WriteBadRequest(w, "followingId is required")
		return
	}

	if err := h.followService.Unfollow(r.Context(), userID, followingID); err != nil {
		log.Printf("[ERROR] Unfollow handler: user=%s target=%s err=%v", userID, followingID, err)
		httputil.WriteInternalError(w, "Failed to unfollow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetFollowers handles GET /users/:id/followers
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.followService.GetFollowers)
}

// GetFollowing handles GET /users/:id/following
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.followService.GetFollowing)
}

func (h *FollowHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, userID string, viewerID *string, limit, offset int) (*model.FollowListResponse, error),
) {
	userID := chi.URLParam(r, "id")

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	limit, offset, err := pageParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := fetch(r.Context(), userID, viewerID, limit, offset)
	if err != nil {
		log.Printf("[ERROR] Follow list handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to load users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
